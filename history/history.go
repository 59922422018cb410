// Package history keeps the append-only log of guess results. Events only
// ever accumulate; nothing edits or deletes past results.
package history

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/earkata/eartui/pitch"
	"github.com/earkata/eartui/store"
)

const storeKey = "history"

// Event records a single guess: which note was quizzed, what the user
// answered, and whether they were right.
type Event struct {
	ID         uuid.UUID
	Timestamp  time.Time
	Midi       pitch.Midi
	PitchClass pitch.Class
	Octave     int
	Guessed    pitch.Class
	Correct    bool
}

// eventJSON is the wire shape. Timestamps are unix milliseconds. Early
// releases wrote the quizzed pitch class under "letter"; readers accept
// both spellings.
type eventJSON struct {
	ID         string `json:"id,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Midi       int    `json:"midi"`
	PitchClass string `json:"pitchClass,omitempty"`
	Letter     string `json:"letter,omitempty"`
	Octave     int    `json:"octave"`
	Guessed    string `json:"guessedPitchClass"`
	Correct    bool   `json:"correct"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		ID:         e.ID.String(),
		Timestamp:  e.Timestamp.UnixMilli(),
		Midi:       int(e.Midi),
		PitchClass: string(e.PitchClass),
		Octave:     e.Octave,
		Guessed:    string(e.Guessed),
		Correct:    e.Correct,
	})
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w eventJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	class := w.PitchClass
	if class == "" {
		class = w.Letter
	}
	// Events predating the id field parse to uuid.Nil.
	id, err := uuid.Parse(w.ID)
	if err != nil {
		id = uuid.Nil
	}
	*e = Event{
		ID:         id,
		Timestamp:  time.UnixMilli(w.Timestamp),
		Midi:       pitch.Midi(w.Midi),
		PitchClass: pitch.Class(class),
		Octave:     w.Octave,
		Guessed:    pitch.Class(w.Guessed),
		Correct:    w.Correct,
	}
	return nil
}

// Log is the persisted event sequence. A malformed or missing blob reads as
// an empty history rather than an error.
type Log struct {
	st *store.Store

	mu     sync.Mutex
	events []Event
}

func NewLog(st *store.Store) *Log {
	l := &Log{st: st}
	var events []Event
	if st.Get(storeKey, &events) {
		l.events = events
	}
	return l
}

// Append adds one event and persists the whole log.
func (l *Log) Append(ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return l.st.Put(storeKey, l.events)
}

// All returns a snapshot copy, safe to hold across later appends.
func (l *Log) All() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len reports the number of recorded guesses.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

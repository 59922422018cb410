// Package quiz holds the note quiz engine: weighted target selection over
// the enabled pitch classes, a short anti-repetition window, and the round
// lifecycle from prompt through guess feedback.
package quiz

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/earkata/eartui/history"
	"github.com/earkata/eartui/pitch"
)

// State is the round lifecycle position.
type State int

const (
	// Idle: no current note, no feedback.
	Idle State = iota
	// Prompted: a note has been chosen and played, awaiting the first guess.
	Prompted
	// PostGuess: the guess is recorded; feedback and previews are available.
	PostGuess
)

// How many recently played notes are excluded from selection.
const recentWindowSize = 3

// Weight applied to the previous round's pitch class so back-to-back
// repeats are less common. A tuning knob, not a rule of music.
const repeatWeight = 0.5

type (
	// Target is the note currently being quizzed. It lives for one round
	// and is never persisted.
	Target struct {
		pitch.Note
		Instrument string
	}

	// Outcome is everything a guess produces: the recorded event and the
	// nearest playable note per enabled class, for post-guess comparison.
	Outcome struct {
		Event    history.Event
		Correct  bool
		Target   Target
		Previews map[pitch.Class]pitch.Note
	}

	// Recorder receives guess events. *history.Log satisfies it.
	Recorder interface {
		Append(history.Event) error
	}
)

// RecentWindow is a rolling list of the last few played MIDI notes, oldest
// evicted first. Every played or previewed note lands here, not only
// chosen targets.
type RecentWindow struct {
	midis []pitch.Midi
}

func (w *RecentWindow) Push(m pitch.Midi) {
	w.midis = append(w.midis, m)
	if len(w.midis) > recentWindowSize {
		w.midis = w.midis[len(w.midis)-recentWindowSize:]
	}
}

// Midis returns a snapshot of the window, oldest first.
func (w *RecentWindow) Midis() []pitch.Midi {
	out := make([]pitch.Midi, len(w.midis))
	copy(out, w.midis)
	return out
}

// ActiveSet is the subset of pitch classes enabled for quizzing. It is
// never empty: Toggle refuses to disable the last member.
type ActiveSet struct {
	on map[pitch.Class]bool
}

// DefaultActiveSet enables C, E and G#.
func DefaultActiveSet() ActiveSet {
	return ActiveSet{on: map[pitch.Class]bool{"C": true, "E": true, "G#": true}}
}

// ActiveSetFrom builds a set from a persisted label->enabled map. Unknown
// labels are ignored; a nil, empty or all-false map falls back to the
// default set.
func ActiveSetFrom(m map[string]bool) ActiveSet {
	s := ActiveSet{on: make(map[pitch.Class]bool, len(pitch.Classes))}
	for _, c := range pitch.Classes {
		if m[string(c)] {
			s.on[c] = true
		}
	}
	if len(s.on) == 0 {
		return DefaultActiveSet()
	}
	return s
}

// Enabled reports whether the class is quizzable.
func (s ActiveSet) Enabled(c pitch.Class) bool { return s.on[c] }

// Classes returns the enabled classes in display order.
func (s ActiveSet) Classes() []pitch.Class {
	var out []pitch.Class
	for _, c := range pitch.Classes {
		if s.on[c] {
			out = append(out, c)
		}
	}
	return out
}

// Toggle flips one class. It returns false, changing nothing, when the
// flip would empty the set.
func (s ActiveSet) Toggle(c pitch.Class) bool {
	if s.on[c] && len(s.on) == 1 {
		return false
	}
	if s.on[c] {
		delete(s.on, c)
	} else if pitch.Valid(c) {
		s.on[c] = true
	} else {
		return false
	}
	return true
}

// Map returns the persistable label->enabled form, covering all twelve
// labels.
func (s ActiveSet) Map() map[string]bool {
	m := make(map[string]bool, len(pitch.Classes))
	for _, c := range pitch.Classes {
		m[string(c)] = s.on[c]
	}
	return m
}

// SelectTarget picks the next quiz note. The previous round's class is
// down-weighted when more than one class is active; notes in recent are
// excluded unless that would leave nothing to pick. ok is false only when
// active is empty or the chosen class has no playable notes.
func SelectTarget(rng *rand.Rand, active []pitch.Class, recent []pitch.Midi, prev pitch.Class) (pitch.Note, bool) {
	if len(active) == 0 {
		return pitch.Note{}, false
	}

	var class pitch.Class
	if prev != "" && len(active) > 1 && slices.Contains(active, prev) {
		class = weightedPick(rng, active, prev)
	} else {
		class = active[rng.Intn(len(active))]
	}

	candidates := pitch.ValidMidis(class)
	fresh := make([]pitch.Midi, 0, len(candidates))
	for _, m := range candidates {
		if !slices.Contains(recent, m) {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		// Everything playable was heard recently; repeating beats silence.
		fresh = candidates
	}
	if len(fresh) == 0 {
		return pitch.Note{}, false
	}
	return fresh[rng.Intn(len(fresh))].Note(), true
}

func weightedPick(rng *rand.Rand, active []pitch.Class, prev pitch.Class) pitch.Class {
	total := float64(len(active)-1) + repeatWeight
	r := rng.Float64() * total
	for _, c := range active {
		w := 1.0
		if c == prev {
			w = repeatWeight
		}
		if r < w {
			return c
		}
		r -= w
	}
	return active[len(active)-1]
}

// Engine drives the round lifecycle. It is single-writer state, owned by
// the UI event loop.
type Engine struct {
	rng    *rand.Rand
	active ActiveSet
	recent RecentWindow
	rec    Recorder
	log    *log.Logger

	state     State
	target    *Target
	outcome   *Outcome
	prevClass pitch.Class
}

// New builds an engine over the given recorder and active set. A nil rng
// gets a time-seeded one; tests inject a fixed seed.
func New(rec Recorder, active ActiveSet, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		rng:    rng,
		active: active,
		rec:    rec,
		log:    log.Default(),
	}
}

func (e *Engine) State() State { return e.state }

// Target returns the current round's note, if a round is underway.
func (e *Engine) Target() (Target, bool) {
	if e.target == nil {
		return Target{}, false
	}
	return *e.target, true
}

// Outcome returns the last guess result while in PostGuess.
func (e *Engine) Outcome() (Outcome, bool) {
	if e.state != PostGuess || e.outcome == nil {
		return Outcome{}, false
	}
	return *e.outcome, true
}

// ActiveClasses returns the enabled classes in display order.
func (e *Engine) ActiveClasses() []pitch.Class { return e.active.Classes() }

// ClassEnabled reports whether the class is currently quizzable.
func (e *Engine) ClassEnabled(c pitch.Class) bool { return e.active.Enabled(c) }

// ActiveMap returns the persistable form of the active set.
func (e *Engine) ActiveMap() map[string]bool { return e.active.Map() }

// RecentMidis exposes the anti-repetition window, oldest first.
func (e *Engine) RecentMidis() []pitch.Midi { return e.recent.Midis() }

// StartRound selects a fresh target and moves to Prompted, clearing any
// prior feedback. ok is false when nothing is selectable, in which case
// state is untouched.
func (e *Engine) StartRound(instrument string) (Target, bool) {
	note, ok := SelectTarget(e.rng, e.active.Classes(), e.recent.Midis(), e.prevClass)
	if !ok {
		return Target{}, false
	}
	e.target = &Target{Note: note, Instrument: instrument}
	e.outcome = nil
	e.state = Prompted
	e.prevClass = note.Class
	e.recent.Push(note.Midi)
	return *e.target, true
}

// Guess scores the answer against the current target, appends exactly one
// history event, computes the per-class nearest-note previews and moves to
// PostGuess. It is a no-op outside Prompted.
func (e *Engine) Guess(c pitch.Class) (Outcome, bool) {
	if e.state != Prompted || e.target == nil {
		return Outcome{}, false
	}
	target := *e.target

	ev := history.Event{
		ID:         uuid.New(),
		Timestamp:  time.Now(),
		Midi:       target.Midi,
		PitchClass: target.Class,
		Octave:     target.Octave,
		Guessed:    c,
		Correct:    c == target.Class,
	}
	if err := e.rec.Append(ev); err != nil {
		// Losing one event is better than losing the round.
		e.log.Printf("quiz: append history: %v", err)
	}

	previews := make(map[pitch.Class]pitch.Note, len(e.active.on))
	for _, ac := range e.active.Classes() {
		if n, ok := pitch.Nearest(ac, target.Midi); ok {
			previews[ac] = n
		}
	}

	e.outcome = &Outcome{
		Event:    ev,
		Correct:  ev.Correct,
		Target:   target,
		Previews: previews,
	}
	e.state = PostGuess
	return *e.outcome, true
}

// Replay re-surfaces the current target for another listen. Only valid in
// Prompted; it records nothing, but the played note re-enters the
// anti-repetition window.
func (e *Engine) Replay() (Target, bool) {
	if e.state != Prompted || e.target == nil {
		return Target{}, false
	}
	e.recent.Push(e.target.Midi)
	return *e.target, true
}

// Preview returns the nearest note of the given class to the last target,
// for audible comparison after a guess. The previewed note enters the
// anti-repetition window.
func (e *Engine) Preview(c pitch.Class) (pitch.Note, bool) {
	if e.state != PostGuess || e.outcome == nil {
		return pitch.Note{}, false
	}
	n, ok := e.outcome.Previews[c]
	if !ok {
		return pitch.Note{}, false
	}
	e.recent.Push(n.Midi)
	return n, true
}

// Toggle flips a pitch class in the active set. Changing the set mid-round
// abandons the round without recording anything, so half-finished rounds
// never skew the statistics. Returns false when the flip is refused.
func (e *Engine) Toggle(c pitch.Class) bool {
	if !e.active.Toggle(c) {
		return false
	}
	if e.state != Idle {
		e.target = nil
		e.outcome = nil
		e.state = Idle
	}
	return true
}

// Package pitch provides note arithmetic over the quiz's playable MIDI range.
package pitch

import "fmt"

type (
	// Class is one of the twelve pitch-class labels, ex: "C", "F#".
	Class string

	// Midi is a MIDI note number, based on C4=60.
	Midi int

	// Note is a Midi broken out into its pitch class and octave.
	Note struct {
		Midi   Midi
		Class  Class
		Octave int
	}
)

// Playable range for quiz targets: A2..G5.
const (
	MinMidi Midi = 45
	MaxMidi Midi = 79
)

// Classes lists the twelve pitch classes in display order, starting at C.
var Classes = []Class{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var classIndex = func() map[Class]int {
	m := make(map[Class]int, len(Classes))
	for i, c := range Classes {
		m[c] = i
	}
	return m
}()

// Valid reports whether the label is one of the twelve pitch classes.
func Valid(c Class) bool {
	_, ok := classIndex[c]
	return ok
}

// FromParts returns the MIDI number for a pitch class in a given octave,
// ex: ("C", 4) -> 60. Returns -1 for a label outside the twelve classes.
func FromParts(c Class, octave int) Midi {
	i, ok := classIndex[c]
	if !ok {
		return -1
	}
	return Midi(12*(octave+1) + i)
}

// Class returns the pitch class of the note, ex: 61 -> "C#".
func (m Midi) Class() Class {
	i := int(m) % 12
	if i < 0 || int(m) < 0 {
		return ""
	}
	return Classes[i]
}

// Octave returns the octave of the note, ex: 60 -> 4.
func (m Midi) Octave() int {
	return int(m)/12 - 1
}

// Name returns the note in scientific pitch notation, ex: 61 -> "C#4".
func (m Midi) Name() string {
	return fmt.Sprintf("%s%d", m.Class(), m.Octave())
}

// InRange reports whether the note is a playable quiz target.
func (m Midi) InRange() bool {
	return m >= MinMidi && m <= MaxMidi
}

// Note expands the MIDI number into its (class, octave) parts.
func (m Midi) Note() Note {
	return Note{Midi: m, Class: m.Class(), Octave: m.Octave()}
}

// ValidMidis returns every playable MIDI number for the pitch class,
// ascending. Octaves 0..8 are considered and clipped to [MinMidi, MaxMidi].
func ValidMidis(c Class) []Midi {
	i, ok := classIndex[c]
	if !ok {
		return nil
	}
	var midis []Midi
	for octave := 0; octave <= 8; octave++ {
		m := Midi(12*(octave+1) + i)
		if m.InRange() {
			midis = append(midis, m)
		}
	}
	return midis
}

// Nearest returns the playable note of the given pitch class closest to
// target. Ties go to the lower MIDI number. The second return is false only
// when the class has no playable notes at all.
func Nearest(c Class, target Midi) (Note, bool) {
	midis := ValidMidis(c)
	if len(midis) == 0 {
		return Note{}, false
	}
	best := midis[0]
	for _, m := range midis[1:] {
		// Strict < over an ascending list keeps the lower note on ties.
		if absDist(m, target) < absDist(best, target) {
			best = m
		}
	}
	return best.Note(), true
}

func absDist(a, b Midi) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

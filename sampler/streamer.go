package sampler

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
)

// NoteStreamer holds a rendered note as stereo sample buffers and streams
// it to beep. It implements beep.StreamSeeker.
type NoteStreamer struct {
	pos   int
	left  []float32
	right []float32
}

func NewNoteStreamer(d time.Duration, sampleRate int) *NoteStreamer {
	n := beep.SampleRate(sampleRate).N(d)
	return &NoteStreamer{
		left:  make([]float32, n),
		right: make([]float32, n),
	}
}

// Stream fills samples from the rendered buffers, padding with silence once
// the note is drained.
func (ns *NoteStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if ns.pos >= len(ns.left) {
		return 0, false
	}
	for i := range samples {
		if ns.pos >= len(ns.left) {
			samples[i] = [2]float64{}
			continue
		}
		samples[i][0] = float64(ns.left[ns.pos])
		samples[i][1] = float64(ns.right[ns.pos])
		ns.pos++
		n++
	}
	return n, true
}

// Len returns the total number of samples.
func (ns *NoteStreamer) Len() int { return len(ns.left) }

// Position returns the current sample offset.
func (ns *NoteStreamer) Position() int { return ns.pos }

// Seek moves the sample offset.
func (ns *NoteStreamer) Seek(p int) error {
	if p < 0 || p > len(ns.left) {
		return fmt.Errorf("sampler: seek out of range: %d", p)
	}
	ns.pos = p
	return nil
}

func (ns *NoteStreamer) Err() error { return nil }

// Package stats summarizes guess history into per-pitch-class accuracy.
package stats

import (
	"math"
	"time"

	"github.com/earkata/eartui/history"
	"github.com/earkata/eartui/pitch"
)

type (
	// Filter is an inclusion test over history events.
	Filter func(history.Event) bool

	// Line is one row of the summary.
	Line struct {
		Label   string
		Total   int
		Correct int
		// Pct is the rounded accuracy percentage, 0 when Total is 0.
		Pct int
	}

	Summary struct {
		Overall Line
		// PerClass always holds all twelve pitch classes in display order,
		// including ones with no attempts.
		PerClass []Line
	}
)

// All keeps every event.
func All(history.Event) bool { return true }

// LastWeek keeps events within the trailing 7x24h from now.
func LastWeek(now time.Time) Filter {
	cutoff := now.Add(-7 * 24 * time.Hour)
	return func(ev history.Event) bool {
		return !ev.Timestamp.Before(cutoff)
	}
}

// SameDay keeps events on the same calendar day as ref, in local time.
func SameDay(ref time.Time) Filter {
	ry, rm, rd := ref.Local().Date()
	return func(ev history.Event) bool {
		y, m, d := ev.Timestamp.Local().Date()
		return y == ry && m == rm && d == rd
	}
}

// Summarize folds the filtered events into overall and per-class accuracy
// lines. It is a pure function of its inputs; pass a snapshot of the log.
// A nil filter keeps everything.
func Summarize(events []history.Event, keep Filter) Summary {
	if keep == nil {
		keep = All
	}

	type tally struct{ total, correct int }
	perClass := make(map[pitch.Class]tally, len(pitch.Classes))
	var overall tally

	for _, ev := range events {
		if !keep(ev) {
			continue
		}
		t := perClass[ev.PitchClass]
		t.total++
		overall.total++
		if ev.Correct {
			t.correct++
			overall.correct++
		}
		perClass[ev.PitchClass] = t
	}

	s := Summary{
		Overall: Line{
			Label:   "All",
			Total:   overall.total,
			Correct: overall.correct,
			Pct:     pct(overall.correct, overall.total),
		},
		PerClass: make([]Line, 0, len(pitch.Classes)),
	}
	for _, c := range pitch.Classes {
		t := perClass[c]
		s.PerClass = append(s.PerClass, Line{
			Label:   string(c),
			Total:   t.total,
			Correct: t.correct,
			Pct:     pct(t.correct, t.total),
		})
	}
	return s
}

func pct(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

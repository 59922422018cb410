package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/earkata/eartui/history"
	"github.com/earkata/eartui/stats"
)

func TestSummarize(t *testing.T) {
	now := time.Now()
	events := []history.Event{
		{PitchClass: "C", Correct: true, Timestamp: now},
		{PitchClass: "C", Correct: false, Timestamp: now},
		{PitchClass: "E", Correct: true, Timestamp: now},
	}

	s := stats.Summarize(events, nil)

	require.Equal(t, stats.Line{Label: "All", Total: 3, Correct: 2, Pct: 67}, s.Overall)

	require.Len(t, s.PerClass, 12)
	byLabel := make(map[string]stats.Line, len(s.PerClass))
	for _, l := range s.PerClass {
		byLabel[l.Label] = l
	}
	require.Equal(t, stats.Line{Label: "C", Total: 2, Correct: 1, Pct: 50}, byLabel["C"])
	require.Equal(t, stats.Line{Label: "E", Total: 1, Correct: 1, Pct: 100}, byLabel["E"])
	for _, label := range []string{"C#", "D", "D#", "F", "F#", "G", "G#", "A", "A#", "B"} {
		require.Equal(t, stats.Line{Label: label}, byLabel[label], "label %s", label)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := stats.Summarize(nil, stats.All)
	require.Equal(t, stats.Line{Label: "All"}, s.Overall)
	require.Len(t, s.PerClass, 12)
}

func TestPerClassOrder(t *testing.T) {
	s := stats.Summarize(nil, nil)
	want := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	for i, l := range s.PerClass {
		require.Equal(t, want[i], l.Label)
	}
}

func TestLastWeek(t *testing.T) {
	now := time.Now()
	keep := stats.LastWeek(now)

	require.True(t, keep(history.Event{Timestamp: now}))
	require.True(t, keep(history.Event{Timestamp: now.Add(-2 * 24 * time.Hour)}))
	require.True(t, keep(history.Event{Timestamp: now.Add(-7 * 24 * time.Hour)}))
	require.False(t, keep(history.Event{Timestamp: now.Add(-7*24*time.Hour - time.Second)}))
}

func TestSameDay(t *testing.T) {
	ref := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.Local)
	keep := stats.SameDay(ref)

	require.True(t, keep(history.Event{Timestamp: time.Date(2024, time.March, 10, 0, 30, 0, 0, time.Local)}))
	require.True(t, keep(history.Event{Timestamp: time.Date(2024, time.March, 10, 23, 59, 0, 0, time.Local)}))
	require.False(t, keep(history.Event{Timestamp: time.Date(2024, time.March, 9, 23, 59, 0, 0, time.Local)}))
	require.False(t, keep(history.Event{Timestamp: time.Date(2024, time.March, 11, 0, 1, 0, 0, time.Local)}))
}

func TestSummarizeWithFilter(t *testing.T) {
	now := time.Now()
	events := []history.Event{
		{PitchClass: "C", Correct: true, Timestamp: now},
		{PitchClass: "C", Correct: false, Timestamp: now.Add(-30 * 24 * time.Hour)},
	}

	s := stats.Summarize(events, stats.LastWeek(now))
	require.Equal(t, 1, s.Overall.Total)
	require.Equal(t, 1, s.Overall.Correct)
	require.Equal(t, 100, s.Overall.Pct)
}

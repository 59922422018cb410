// Package quizui is the round screen: it plays targets, takes guesses and
// renders feedback. All quiz rules live in the quiz package; this model is
// a thin subscriber.
package quizui

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/earkata/eartui/ekerr"
	"github.com/earkata/eartui/keymap"
	"github.com/earkata/eartui/pitch"
	"github.com/earkata/eartui/quiz"
	"github.com/earkata/eartui/sampler"
	"github.com/earkata/eartui/store"
	"github.com/earkata/eartui/styles"
)

var docStyle = styles.DocStyle

// guessKeys maps qwerty keys to pitch classes, home-row style so fingerings
// roughly follow a real keyboard: naturals on the home row, accidentals on
// the row above.
var guessKeys = []struct {
	Key   string
	Class pitch.Class
}{
	{"a", "C"},
	{"w", "C#"},
	{"s", "D"},
	{"e", "D#"},
	{"d", "E"},
	{"f", "F"},
	{"t", "F#"},
	{"g", "G"},
	{"y", "G#"},
	{"h", "A"},
	{"u", "A#"},
	{"j", "B"},
}

type (
	// ShowStats asks the root model to switch to the statistics screen.
	ShowStats struct{}

	instrumentReady struct {
		name string
		err  error
	}

	// played signals a playback attempt finished queuing (or failing).
	played struct{}
)

type Model struct {
	engine     *quiz.Engine
	loader     *sampler.Loader
	st         *store.Store
	instrument string

	audioNote string // non-empty when audio is degraded
	log       *log.Logger
}

func New(engine *quiz.Engine, loader *sampler.Loader, st *store.Store, instrument string) Model {
	return Model{
		engine:     engine,
		loader:     loader,
		st:         st,
		instrument: instrument,
		log:        log.Default(),
	}
}

// Init warms the instrument so the first round plays without a fetch stall.
func (m Model) Init() tea.Cmd {
	return m.loadInstrument()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case instrumentReady:
		if msg.err != nil {
			// Best effort: the quiz still runs, just silently.
			m.log.Printf("quizui: load %s: %v", msg.name, msg.err)
			m.audioNote = "audio unavailable"
		} else {
			m.audioNote = ""
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.NewNote):
			cmds = append(cmds, m.startRound())

		case key.Matches(msg, keymap.DefaultMapping.Replay):
			if target, ok := m.engine.Replay(); ok {
				cmds = append(cmds, m.play(target.Instrument, target.Midi))
			}

		case key.Matches(msg, keymap.DefaultMapping.Stats):
			cmds = append(cmds, func() tea.Msg { return ShowStats{} })

		default:
			cmds = append(cmds, m.handleClassKey(msg.String())...)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleClassKey resolves the twelve pitch-class keys: lowercase guesses or
// previews, uppercase toggles the class in the active set.
func (m Model) handleClassKey(k string) []tea.Cmd {
	toggle := false
	if k != strings.ToLower(k) {
		toggle = true
		k = strings.ToLower(k)
	}
	for _, gk := range guessKeys {
		if gk.Key != k {
			continue
		}
		if toggle {
			return m.toggleClass(gk.Class)
		}
		switch m.engine.State() {
		case quiz.Prompted:
			return m.guess(gk.Class)
		case quiz.PostGuess:
			if n, ok := m.engine.Preview(gk.Class); ok {
				return []tea.Cmd{m.play(m.instrument, n.Midi)}
			}
		}
		return nil
	}
	return nil
}

func (m Model) startRound() tea.Cmd {
	target, ok := m.engine.StartRound(m.instrument)
	if !ok {
		return nil
	}
	// Warm the cache for the round after this one.
	m.loader.Prefetch(m.instrument)
	return m.play(target.Instrument, target.Midi)
}

func (m Model) guess(c pitch.Class) []tea.Cmd {
	outcome, ok := m.engine.Guess(c)
	if !ok {
		return nil
	}
	// Let the user hear their own answer next to the target.
	if n, ok := m.engine.Preview(outcome.Event.Guessed); ok {
		return []tea.Cmd{m.play(m.instrument, n.Midi)}
	}
	return nil
}

func (m Model) toggleClass(c pitch.Class) []tea.Cmd {
	if !m.engine.Toggle(c) {
		return nil
	}
	if err := m.st.Put(store.SettingsKey, m.engine.ActiveMap()); err != nil {
		m.log.Printf("quizui: persist settings: %v", err)
		return []tea.Cmd{func() tea.Msg {
			return ekerr.ErrMsg{Err: fmt.Errorf("save settings: %w", err)}
		}}
	}
	return nil
}

// play queues one note. Failures are logged and swallowed: the round state
// already moved on and must not depend on audio.
func (m Model) play(instrument string, midi pitch.Midi) tea.Cmd {
	return func() tea.Msg {
		inst, err := m.loader.Load(instrument)
		if err != nil {
			m.log.Printf("quizui: load %s: %v", instrument, err)
			return played{}
		}
		if err := m.loader.Play(inst, int(midi), sampler.PlayOpts{}); err != nil {
			m.log.Printf("quizui: play %s: %v", midi.Name(), err)
		}
		return played{}
	}
}

func (m Model) loadInstrument() tea.Cmd {
	return func() tea.Msg {
		_, err := m.loader.Load(m.instrument)
		return instrumentReady{name: m.instrument, err: err}
	}
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	doc.WriteString(m.keyboard() + "\n\n")
	doc.WriteString(m.statusLine() + "\n")

	help := "n: new note · r: replay · SHIFT+key: toggle class · tab: stats · ctrl+c: quit"
	if m.audioNote != "" {
		help += " · " + m.audioNote
	}
	doc.WriteString(styles.HelpMenu.Render(styles.SubtleStyle.Render(help)))

	if physicalWidth > 0 {
		docStyle = docStyle.MaxWidth(physicalWidth)
	}
	return docStyle.Render(doc.String())
}

// keyboard renders the twelve pitch classes as keys, dimming disabled ones.
func (m Model) keyboard() string {
	rendered := make([]string, 0, len(guessKeys))
	for _, gk := range guessKeys {
		label := fmt.Sprintf("%s\n(%s)", gk.Class, gk.Key)
		if m.engine.ClassEnabled(gk.Class) {
			rendered = append(rendered, styles.ActiveKeyStyle.Render(label))
		} else {
			rendered = append(rendered, styles.InactiveKeyStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) statusLine() string {
	switch m.engine.State() {
	case quiz.Prompted:
		return styles.MessageText.Render("Which pitch class was that? Answer with the keys above, or r to replay.")
	case quiz.PostGuess:
		outcome, ok := m.engine.Outcome()
		if !ok {
			return ""
		}
		name := outcome.Target.Midi.Name()
		if outcome.Correct {
			return styles.CorrectStyle.Render(fmt.Sprintf("Correct! It was %s.", name)) +
				styles.SubtleStyle.Render("  Press class keys to compare, n for another.")
		}
		return styles.WrongStyle.Render(fmt.Sprintf("It was %s, not %s.", name, outcome.Event.Guessed)) +
			styles.SubtleStyle.Render("  Press class keys to compare, n for another.")
	default:
		return styles.MessageText.Render("Press n to hear a note.")
	}
}

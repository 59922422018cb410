package eartui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/earkata/eartui/assetcache"
	"github.com/earkata/eartui/ekerr"
	"github.com/earkata/eartui/history"
	"github.com/earkata/eartui/keymap"
	"github.com/earkata/eartui/quiz"
	"github.com/earkata/eartui/quizui"
	"github.com/earkata/eartui/sampler"
	"github.com/earkata/eartui/statsui"
	"github.com/earkata/eartui/store"
	"github.com/earkata/eartui/styles"
)

// Set via ldflags at build time.
var (
	releaseVersion = "dev"
	buildTime      = ""
)

// Version returns the release version and, when present, the ISO-8601 build
// timestamp.
func Version() string {
	if buildTime == "" {
		return releaseVersion
	}
	return releaseVersion + " (" + buildTime + ")"
}

type (
	appView int

	mainModel struct {
		curView  appView
		quiz     tea.Model
		stats    tea.Model
		curError string
	}
)

const (
	quizView appView = iota
	statsView
)

// Config carries the flag-level settings for a run.
type Config struct {
	// DataDir holds persisted settings, history and cached assets.
	DataDir string
	// Instrument is the SoundFont name quizzed with, ex: "acoustic_grand_piano".
	Instrument string
	// AssetURL is the host sample assets are fetched from on a cache miss.
	AssetURL string
}

func NewModel(cfg Config) (mainModel, error) {
	st, err := store.New(cfg.DataDir)
	if err != nil {
		return mainModel{}, err
	}

	cache, err := assetcache.New(cfg.DataDir, cfg.AssetURL)
	if err != nil {
		return mainModel{}, err
	}
	loader := sampler.NewLoader(cache)

	var selected map[string]bool
	if !st.Get(store.SettingsKey, &selected) {
		selected = nil
	}

	hist := history.NewLog(st)
	engine := quiz.New(hist, quiz.ActiveSetFrom(selected), nil)

	return mainModel{
		curView: quizView,
		quiz:    quizui.New(engine, loader, st, cfg.Instrument),
		stats:   statsui.New(hist),
	}, nil
}

func (m mainModel) Init() tea.Cmd {
	return tea.Batch(
		m.quiz.Init(),
		m.stats.Init(),
	)
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case ekerr.ErrMsg:
		m.curError = msg.Error()

	case tea.KeyMsg:
		if key.Matches(msg, keymap.DefaultMapping.Quit) {
			return m, tea.Quit
		}

	case quizui.ShowStats:
		m.curView = statsView
		cmds = append(cmds, func() tea.Msg { return statsui.Show{} })

	case statsui.Back:
		m.curView = quizView
	}

	switch m.curView {
	case quizView:
		m.quiz, cmd = m.quiz.Update(msg)
	case statsView:
		m.stats, cmd = m.stats.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m mainModel) View() string {
	footer := "\n" + styles.SubtleStyle.Render("eartui "+Version()) + "\n"
	if m.curError != "" {
		footer += styles.RenderError(m.curError) + "\n"
	}

	switch m.curView {
	case statsView:
		return m.stats.View() + footer
	default:
		return m.quiz.View() + footer
	}
}

func Run(cfg Config) {
	m, err := NewModel(cfg)
	if err != nil {
		bail(err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		bail(err)
	}
}

func bail(err error) {
	if err != nil {
		fmt.Printf("Uh oh, there was an error: %v\n", err)
		os.Exit(1)
	}
}

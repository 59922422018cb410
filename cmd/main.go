package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/earkata/eartui"
)

var (
	dataDirVar    string
	instrumentVar string
	assetURLVar   string
)

func init() {
	flag.StringVar(&dataDirVar, "data", defaultDataDir(), "Directory for settings, history and cached samples")
	flag.StringVar(&instrumentVar, "instrument", "acoustic_grand_piano", "SoundFont instrument to quiz with")
	flag.StringVar(&assetURLVar, "assets", "https://assets.earkata.dev/soundfonts", "Base URL for sample assets")

	flag.Parse()
}

func main() {
	// Stdout belongs to the TUI; route the standard logger to a file.
	os.MkdirAll(dataDirVar, 0o755)
	f, err := tea.LogToFile(filepath.Join(dataDirVar, "eartui.log"), "eartui")
	if err == nil {
		defer f.Close()
	} else {
		log.SetOutput(os.Stderr)
	}

	eartui.Run(eartui.Config{
		DataDir:    dataDirVar,
		Instrument: instrumentVar,
		AssetURL:   assetURLVar,
	})
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".eartui"
	}
	return filepath.Join(base, "eartui")
}

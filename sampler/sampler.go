// Package sampler loads SoundFont instruments and plays single notes
// through the speaker. Loading is cached per instrument name with at most
// one fetch in flight per name; playback is fire-and-forget.
package sampler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/earkata/eartui/assetcache"
)

const (
	sampleRate = 44100

	// Buffer length for the speaker. Bigger -> less CPU, slower response.
	speakerBufLen = time.Millisecond * 20

	defaultDuration = time.Second * 2
	defaultVelocity = 110

	// Note rendered to measure an instrument's peak amplitude.
	probeNote = 60
)

// Instrument is a loaded SoundFont plus its normalization gain.
type Instrument struct {
	Name string
	// Gain scales playback so instruments with quiet or hot samples sit at
	// comparable levels. 1.0 when the peak could not be measured.
	Gain float64

	soundFont *meltysynth.SoundFont
	settings  *meltysynth.SynthesizerSettings
}

type load struct {
	done chan struct{}
	inst *Instrument
	err  error
}

// Loader fetches instruments through the asset cache and keeps them for
// the session.
type Loader struct {
	cache      *assetcache.Cache
	log        *log.Logger
	speakerErr error

	mu    sync.Mutex
	loads map[string]*load
}

// NewLoader initializes the speaker and returns a loader backed by the
// given asset cache. A failed speaker init degrades to silent playback
// rather than failing: quizzing works without audio, Play just errors.
func NewLoader(cache *assetcache.Cache) *Loader {
	sr := beep.SampleRate(sampleRate)
	err := speaker.Init(sr, sr.N(speakerBufLen))
	if err != nil {
		err = fmt.Errorf("sampler: speaker init: %w", err)
	}
	return &Loader{
		cache:      cache,
		log:        log.Default(),
		speakerErr: err,
		loads:      make(map[string]*load),
	}
}

// Load returns the instrument for name, fetching and parsing it on first
// use. Concurrent calls for the same name share a single in-flight load;
// later calls get the cached handle without re-fetching.
func (l *Loader) Load(name string) (*Instrument, error) {
	l.mu.Lock()
	if ld, ok := l.loads[name]; ok {
		l.mu.Unlock()
		<-ld.done
		return ld.inst, ld.err
	}
	ld := &load{done: make(chan struct{})}
	l.loads[name] = ld
	l.mu.Unlock()

	ld.inst, ld.err = l.fetch(name)
	close(ld.done)

	if ld.err != nil {
		// Failed loads are forgotten so a later attempt can retry.
		l.mu.Lock()
		delete(l.loads, name)
		l.mu.Unlock()
	}
	return ld.inst, ld.err
}

// Prefetch warms the cache for name in the background. Best effort: the
// result is dropped and failures only logged.
func (l *Loader) Prefetch(name string) {
	go func() {
		if _, err := l.Load(name); err != nil {
			l.log.Printf("sampler: prefetch %s: %v", name, err)
		}
	}()
}

func (l *Loader) fetch(name string) (*Instrument, error) {
	rc, err := l.cache.Open(name + ".sf2")
	if err != nil {
		return nil, fmt.Errorf("sampler: open %s: %w", name, err)
	}
	defer rc.Close()

	soundFont, err := meltysynth.NewSoundFont(rc)
	if err != nil {
		return nil, fmt.Errorf("sampler: parse %s: %w", name, err)
	}
	settings := meltysynth.NewSynthesizerSettings(sampleRate)

	inst := &Instrument{
		Name:      name,
		Gain:      1.0,
		soundFont: soundFont,
		settings:  settings,
	}
	if peak, err := inst.peak(); err == nil {
		inst.Gain = NormalizeGain(peak)
	}
	return inst, nil
}

// peak renders a short probe note and returns its maximum amplitude.
func (i *Instrument) peak() (float64, error) {
	synth, err := meltysynth.NewSynthesizer(i.soundFont, i.settings)
	if err != nil {
		return 0, err
	}
	n := beep.SampleRate(sampleRate).N(time.Millisecond * 500)
	left := make([]float32, n)
	right := make([]float32, n)
	synth.NoteOn(0, probeNote, 127)
	synth.Render(left, right)

	var peak float64
	for idx := range left {
		for _, s := range []float32{left[idx], right[idx]} {
			v := float64(s)
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	return peak, nil
}

// NormalizeGain converts a sample peak amplitude into a playback gain.
// A zero or unmeasurable peak yields unity gain.
func NormalizeGain(peak float64) float64 {
	if peak <= 0 {
		return 1.0
	}
	return 1.0 / peak
}

// PlayOpts adjusts a single playback. Zero values mean the defaults.
type PlayOpts struct {
	// Gain multiplies the instrument's normalization gain.
	Gain     float64
	Duration time.Duration
	Velocity int
}

// Play renders one note and hands it to the speaker. It returns once the
// note is queued; nothing waits on the audio finishing, and overlapping
// notes simply mix.
func (l *Loader) Play(inst *Instrument, midi int, opts PlayOpts) error {
	if l.speakerErr != nil {
		return l.speakerErr
	}
	if opts.Gain == 0 {
		opts.Gain = 1.0
	}
	if opts.Duration == 0 {
		opts.Duration = defaultDuration
	}
	if opts.Velocity == 0 {
		opts.Velocity = defaultVelocity
	}

	// A synthesizer per note keeps concurrent notes independent.
	synth, err := meltysynth.NewSynthesizer(inst.soundFont, inst.settings)
	if err != nil {
		return fmt.Errorf("sampler: synth: %w", err)
	}

	st := NewNoteStreamer(opts.Duration, sampleRate)
	synth.NoteOn(0, int32(midi), int32(opts.Velocity))
	synth.Render(st.left, st.right)

	sr := beep.SampleRate(sampleRate)
	gained := &effects.Gain{
		Streamer: beep.Take(sr.N(opts.Duration), st),
		Gain:     inst.Gain*opts.Gain - 1,
	}
	speaker.Play(gained)
	return nil
}

// Package audio synthesizes and mixes combat sound effects.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"

	"field-fighter/internal/combat"
)

// ErrUnknownSound is returned for sound names without a synth definition.
var ErrUnknownSound = errors.New("audio: unknown sound effect")

// Sounds raised by the game host rather than the combat core
const (
	SoundCreatureHit = "creature_hit"
	SoundOrbFire     = "orb_fire"
	SoundTeleport    = "teleport"
)

// maxVoices caps concurrently mixed effects
const maxVoices = 8

// Config holds mixer configuration
type Config struct {
	Enabled     bool
	Volume      float64 // 0.0-1.0 applied to every effect
	SampleRate  int
	FPS         int // frames per second pulled by GenerateFrame
	MusicPath   string
	MusicVolume float64
}

// DefaultConfig returns a 44.1kHz stereo mixer pulled at 30 fps.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Volume:      0.8,
		SampleRate:  44100,
		FPS:         30,
		MusicVolume: 0.15,
	}
}

type effectSpec struct {
	freq     float64
	duration time.Duration
	volume   float64
	debounce time.Duration // repeats inside this window are dropped
}

var effectSpecs = map[string]effectSpec{
	combat.SoundBlockActivate: {freq: 520, duration: 60 * time.Millisecond, volume: 0.4},
	combat.SoundBlockHit:      {freq: 260, duration: 80 * time.Millisecond, volume: 0.6, debounce: 100 * time.Millisecond},
	combat.SoundBlockBreak:    {freq: 110, duration: 300 * time.Millisecond, volume: 0.9, debounce: 250 * time.Millisecond},
	combat.SoundKineticStrike: {freq: 660, duration: 250 * time.Millisecond, volume: 0.8, debounce: 250 * time.Millisecond},
	SoundCreatureHit:          {freq: 180, duration: 50 * time.Millisecond, volume: 0.5, debounce: 50 * time.Millisecond},
	SoundOrbFire:              {freq: 880, duration: 120 * time.Millisecond, volume: 0.4, debounce: 100 * time.Millisecond},
	SoundTeleport:             {freq: 1320, duration: 90 * time.Millisecond, volume: 0.4, debounce: 100 * time.Millisecond},
}

// Names returns every sound the mixer can synthesize.
func Names() []string {
	names := make([]string, 0, len(effectSpecs))
	for name := range effectSpecs {
		names = append(names, name)
	}
	return names
}

// Mixer implements combat.SoundPlayer. Each instance owns its debounce table
// of last-played timestamps.
type Mixer struct {
	mu         sync.Mutex
	cfg        Config
	sampleRate beep.SampleRate
	channels   int

	mixer      *beep.Mixer
	lastPlayed map[string]time.Time
	played     map[string]int
	dropped    int
	now        func() time.Time

	music     *MusicPlayer
	frameBuf  [][2]float64
	musicBuf  []int16
	onPlayed  func(name string)
	onDropped func(name string)
}

// NewMixer creates a mixer. A zero SampleRate or FPS falls back to defaults.
func NewMixer(cfg Config) *Mixer {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}

	m := &Mixer{
		cfg:        cfg,
		sampleRate: beep.SampleRate(cfg.SampleRate),
		channels:   2,
		mixer:      &beep.Mixer{},
		lastPlayed: make(map[string]time.Time),
		played:     make(map[string]int),
		now:        time.Now,
	}
	samplesPerFrame := cfg.SampleRate / cfg.FPS
	m.frameBuf = make([][2]float64, samplesPerFrame)
	m.musicBuf = make([]int16, samplesPerFrame*m.channels)

	if cfg.Enabled && cfg.MusicPath != "" {
		m.music = NewMusicPlayer(cfg.MusicPath, cfg.MusicVolume, cfg.SampleRate)
	}
	return m
}

// SetClock replaces the time source used for debouncing.
func (m *Mixer) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// OnPlayed registers hooks for accepted and dropped effects.
func (m *Mixer) OnPlayed(played, dropped func(name string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPlayed = played
	m.onDropped = dropped
}

// PlaySoundEffect queues a synthesized effect. Repeats inside the effect's
// debounce window and effects over the voice limit are dropped silently.
func (m *Mixer) PlaySoundEffect(name string) error {
	spec, ok := effectSpecs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSound, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.Enabled {
		return nil
	}

	now := m.now()
	if last, seen := m.lastPlayed[name]; seen && now.Sub(last) < spec.debounce {
		m.drop(name)
		return nil
	}
	if m.mixer.Len() >= maxVoices {
		m.drop(name)
		return nil
	}

	tone, err := generators.SineTone(m.sampleRate, spec.freq)
	if err != nil {
		return fmt.Errorf("audio: synth %s: %w", name, err)
	}
	m.lastPlayed[name] = now
	m.played[name]++
	m.mixer.Add(newVolume(beep.Take(m.sampleRate.N(spec.duration), tone), spec.volume*m.cfg.Volume))
	if m.onPlayed != nil {
		m.onPlayed(name)
	}
	return nil
}

func (m *Mixer) drop(name string) {
	m.dropped++
	if m.onDropped != nil {
		m.onDropped(name)
	}
}

// Played returns how many times an effect was accepted.
func (m *Mixer) Played(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.played[name]
}

// Dropped returns how many effects were debounced or over the voice limit.
func (m *Mixer) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Voices returns the number of effects still playing.
func (m *Mixer) Voices() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mixer.Len()
}

// FrameSize returns the byte length of one GenerateFrame result.
func (m *Mixer) FrameSize() int {
	return len(m.frameBuf) * m.channels * 2
}

// GenerateFrame mixes one frame of interleaved little-endian int16 stereo PCM:
// the optional music track under every queued effect.
func (m *Mixer) GenerateFrame() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.frameBuf {
		m.frameBuf[i] = [2]float64{}
	}
	m.mixer.Stream(m.frameBuf)

	if m.music != nil && m.music.IsLoaded() {
		m.music.ReadSamples(m.musicBuf)
	} else {
		for i := range m.musicBuf {
			m.musicBuf[i] = 0
		}
	}

	output := make([]byte, m.FrameSize())
	for i, s := range m.frameBuf {
		for ch := 0; ch < m.channels; ch++ {
			idx := i*m.channels + ch
			sample := int32(floatToInt16(s[ch])) + int32(m.musicBuf[idx])
			binary.LittleEndian.PutUint16(output[idx*2:], uint16(softLimit(sample)))
		}
	}
	return output
}

// Close releases the music track.
func (m *Mixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mixer.Clear()
	if m.music != nil {
		return m.music.Close()
	}
	return nil
}

// newVolume wraps s in a linear volume. Log2(0) is -Inf, so zero is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// softLimit compresses above ±30000 then hard clamps to int16.
func softLimit(sample int32) int16 {
	if sample > 30000 {
		sample = 30000 + (sample-30000)/4
	} else if sample < -30000 {
		sample = -30000 + (sample+30000)/4
	}
	if sample > math.MaxInt16 {
		sample = math.MaxInt16
	} else if sample < math.MinInt16 {
		sample = math.MinInt16
	}
	return int16(sample)
}

// floatToInt16 converts a -1.0..1.0 sample to int16 with soft clipping.
func floatToInt16(sample float64) int16 {
	scaled := sample * 32767.0
	if scaled > 30000 {
		scaled = 30000 + (scaled-30000)/4
	} else if scaled < -30000 {
		scaled = -30000 + (scaled+30000)/4
	}
	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}

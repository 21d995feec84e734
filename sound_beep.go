//go:build !headless

// sound_beep.go - SysBeep, a fixed-duration square-wave tone, grounded on
// audio_chip.go's square-oscillator phase accumulation (Channel.generateSample's
// WAVE_SQUARE case) and audio_backend_oto.go's player lifecycle. Trimmed hard
// relative to SoundChip: no envelope, sweep, PWM, ring modulation, or mixing
// across channels - SysBeep is a single fixed-frequency tone for a fixed
// duration, per spec.md's Non-goal excluding the full synthesizer.

package main

import (
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	beepSampleRate = 44100
	beepFrequency  = 880.0
	beepDuration   = 200 * time.Millisecond
	beepAmplitude  = 0.25
)

// beepOscillator implements oto.Player's io.Reader contract: it emits a
// fixed-frequency square wave for beepDuration samples, then silence.
type beepOscillator struct {
	mu           sync.Mutex
	phase        float32
	phaseInc     float32
	remaining    int
	totalSamples int
}

func newBeepOscillator() *beepOscillator {
	inc := float32(beepFrequency) / float32(beepSampleRate)
	total := int(beepDuration.Seconds() * beepSampleRate)
	return &beepOscillator{phaseInc: inc, remaining: total, totalSamples: total}
}

func (b *beepOscillator) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	numSamples := len(p) / 4
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		if b.remaining <= 0 {
			samples[i] = 0
			continue
		}
		var sample float32
		if b.phase < 0.5 {
			sample = beepAmplitude
		} else {
			sample = -beepAmplitude
		}
		b.phase += b.phaseInc
		if b.phase >= 1 {
			b.phase -= 1
		}
		b.remaining--
		samples[i] = sample
	}

	for i, s := range samples {
		off := i * 4
		bits := math.Float32bits(s)
		p[off] = byte(bits)
		p[off+1] = byte(bits >> 8)
		p[off+2] = byte(bits >> 16)
		p[off+3] = byte(bits >> 24)
	}
	return len(p), nil
}

func (b *beepOscillator) done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining <= 0
}

// BeepDevice owns the oto context used to play SysBeep tones, per spec.md's
// user-alert requirement. A single shared context is reused across calls,
// mirroring OtoPlayer's one-context-per-process lifecycle.
type BeepDevice struct {
	mu  sync.Mutex
	ctx *oto.Context
}

// NewBeepDevice opens the shared oto playback context.
func NewBeepDevice() (*BeepDevice, error) {
	options := &oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, err
	}
	<-ready
	return &BeepDevice{ctx: ctx}, nil
}

// SysBeep plays the fixed-tone alert and blocks until it finishes, per
// spec.md's synchronous alert-sound semantics.
func (bd *BeepDevice) SysBeep() {
	bd.mu.Lock()
	defer bd.mu.Unlock()

	osc := newBeepOscillator()
	player := bd.ctx.NewPlayer(osc)
	defer player.Close()

	player.Play()
	for !osc.done() || player.IsPlaying() {
		time.Sleep(5 * time.Millisecond)
	}
}

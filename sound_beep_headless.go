//go:build headless

// sound_beep_headless.go - no-op SysBeep for CI, grounded on the same
// build-tag swap sound_beep.go's oto-backed BeepDevice would otherwise
// need a real audio device for.

package main

func init() {
	compiledFeatures = append(compiledFeatures, "sound:headless")
}

// BeepDevice is a no-op stand-in under the headless build tag.
type BeepDevice struct{}

// NewBeepDevice never fails in the headless build.
func NewBeepDevice() (*BeepDevice, error) {
	return &BeepDevice{}, nil
}

// SysBeep does nothing; there is no audio device to play through.
func (bd *BeepDevice) SysBeep() {}

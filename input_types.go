// input_types.go - unified device state produced by both input backends,
// per spec.md §4.6.

package main

// DeviceState is the unified state both PS/2 and USB HID backends
// maintain: {x, y, buttons, keymap[16 bytes]}, per spec.md §4.6.
type DeviceState struct {
	X, Y    int16
	Buttons uint8
	Keymap  [16]byte
}

// SetKey sets or clears bit n of the keymap bitmap; bit n is set iff key
// n is currently pressed, per spec.md §4.6.
func (d *DeviceState) SetKey(code uint8, down bool) {
	byteIdx, bit := code/8, code%8
	if down {
		d.Keymap[byteIdx] |= 1 << bit
	} else {
		d.Keymap[byteIdx] &^= 1 << bit
	}
}

// KeyDown reports whether key n is currently pressed.
func (d *DeviceState) KeyDown(code uint8) bool {
	return d.Keymap[code/8]&(1<<(code%8)) != 0
}

// ClampMouse clamps (d.X, d.Y) to the display bounds [0, w) x [0, h),
// per spec.md §4.6: "Mouse accumulation is clamped to the display
// bounds on every update."
func (d *DeviceState) ClampMouse(w, h int16) {
	switch {
	case d.X < 0:
		d.X = 0
	case d.X >= w:
		d.X = w - 1
	}
	switch {
	case d.Y < 0:
		d.Y = 0
	case d.Y >= h:
		d.Y = h - 1
	}
}

package main

import "testing"

// TestPS2ControllerDecodesKeyUpDown verifies spec.md §4.6's scancode
// bit-7-is-key-up convention and the keymap bitmap semantics.
func TestPS2ControllerDecodesKeyUpDown(t *testing.T) {
	c := NewPS2Controller(NewPAL(), 640, 480)
	c.HandleIRQByte(0x1E) // 'A' scancode, make
	if !c.State.KeyDown(0x1E) {
		t.Fatalf("expected key 0x1E down")
	}
	c.HandleIRQByte(0x9E) // 'A' scancode, break (bit 7 set)
	if c.State.KeyDown(0x1E) {
		t.Fatalf("expected key 0x1E up after break code")
	}
}

// TestPS2ControllerMouseClampsToDisplay verifies spec.md §4.6: "Mouse
// accumulation is clamped to the display bounds on every update."
func TestPS2ControllerMouseClampsToDisplay(t *testing.T) {
	c := NewPS2Controller(NewPAL(), 100, 100)
	c.HandleMouseByte(0x00)
	c.HandleMouseByte(0x7F) // large positive dx
	c.HandleMouseByte(0x00)
	if c.State.X != 99 {
		t.Fatalf("X = %d, want clamped to 99", c.State.X)
	}
}

// TestTranslateHIDKeycodeUnmappedReturnsSentinel verifies spec.md §4.6:
// "unmapped codes produce 0xFF and are discarded."
func TestTranslateHIDKeycodeUnmappedReturnsSentinel(t *testing.T) {
	if got := TranslateHIDKeycode(0xFE); got != usbHIDUnmapped {
		t.Fatalf("got 0x%02X, want 0xFF", got)
	}
}

// TestUSBHIDDeviceKeyboardReportTracksReleases verifies a key absent from
// a later report is released, per the boot-protocol "currently held keys"
// semantics in original_source/src/Platform/arm64/usb_hid.c.
func TestUSBHIDDeviceKeyboardReportTracksReleases(t *testing.T) {
	u := NewUSBHIDDevice(640, 480)
	u.HandleKeyboardReport([8]byte{0, 0, 0x04, 0, 0, 0, 0, 0}) // 'A' held
	code := TranslateHIDKeycode(0x04)
	if !u.State.KeyDown(code) {
		t.Fatalf("expected key down after first report")
	}
	u.HandleKeyboardReport([8]byte{}) // nothing held
	if u.State.KeyDown(code) {
		t.Fatalf("expected key released when absent from report")
	}
}

// TestUSBHIDDeviceMouseReportClamps verifies the boot-protocol mouse
// report also respects the display-bounds clamp.
func TestUSBHIDDeviceMouseReportClamps(t *testing.T) {
	u := NewUSBHIDDevice(50, 50)
	u.HandleMouseReport([3]byte{0x01, 0x7F, 0x00})
	u.HandleMouseReport([3]byte{0x01, 0x7F, 0x00})
	if u.State.X != 49 {
		t.Fatalf("X = %d, want clamped to 49", u.State.X)
	}
	if u.State.Buttons != 0x01 {
		t.Fatalf("Buttons = %d, want 1", u.State.Buttons)
	}
}

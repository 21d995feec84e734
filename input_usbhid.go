// input_usbhid.go - USB HID boot-protocol keyboard/mouse decode.
// Endpoint polling interval and boot-protocol report shapes grounded on
// original_source/src/Platform/arm64/usb_hid.c, usb_core.c; spec.md §4.6/§6.

package main

const (
	usbHIDKeyboardReportLen = 8
	usbHIDMouseReportLen    = 3

	// usbHIDPollIntervalMS is the interrupt-IN endpoint polling interval
	// the original boot-protocol driver uses; carried here per
	// SPEC_FULL.md §4's USB HID supplement.
	usbHIDPollIntervalMS = 10

	// usbHIDUnmapped is returned for HID usage codes with no entry in
	// hidToInternalKeycode, per spec.md §4.6: "unmapped codes produce
	// 0xFF and are discarded."
	usbHIDUnmapped = 0xFF
)

// hidToInternalKeycode translates the low 8 bits of a USB HID keyboard
// usage ID into this kernel's internal keycode space. Only the subset of
// the 256-entry table exercised by the boot-protocol alphanumeric and
// modifier range is populated explicitly; any usage ID with no map entry
// yields usbHIDUnmapped via the presence check in TranslateHIDKeycode
// (0x00 is a real entry, the keycode for A).
var hidToInternalKeycode = map[uint8]uint8{
	0x04: 0x00, // A
	0x05: 0x0B, // B
	0x06: 0x08, // C
	0x07: 0x02, // D
	0x08: 0x0E, // E
	0x09: 0x03, // F
	0x0A: 0x05, // G
	0x0B: 0x04, // H
	0x0C: 0x22, // I
	0x0D: 0x26, // J
	0x0E: 0x28, // K
	0x0F: 0x25, // L
	0x10: 0x2E, // M
	0x11: 0x2D, // N
	0x12: 0x1F, // O
	0x13: 0x23, // P
	0x14: 0x0C, // Q
	0x15: 0x0F, // R
	0x16: 0x01, // S
	0x17: 0x11, // T
	0x18: 0x20, // U
	0x19: 0x09, // V
	0x1A: 0x0D, // W
	0x1B: 0x07, // X
	0x1C: 0x10, // Y
	0x1D: 0x06, // Z
	0x2C: 0x31, // space
	0x28: 0x24, // enter
	0x29: 0x35, // escape
	0x2A: 0x33, // backspace
}

// TranslateHIDKeycode maps a USB HID keyboard usage ID to the internal
// keycode space via the fixed lookup table, per spec.md §4.6.
func TranslateHIDKeycode(hid uint8) uint8 {
	if v, ok := hidToInternalKeycode[hid]; ok {
		return v
	}
	return usbHIDUnmapped
}

// USBHIDDevice polls interrupt IN endpoints on a generic USB stack,
// translating HID keycodes and boot-protocol mouse reports into a
// DeviceState, per spec.md §4.6.
type USBHIDDevice struct {
	State DeviceState

	displayW, displayH int16
	pressed            map[uint8]bool
}

// NewUSBHIDDevice constructs a device clamping mouse motion to a
// displayW x displayH surface.
func NewUSBHIDDevice(displayW, displayH int16) *USBHIDDevice {
	return &USBHIDDevice{displayW: displayW, displayH: displayH, pressed: make(map[uint8]bool)}
}

// HandleKeyboardReport decodes an 8-byte boot-protocol keyboard report:
// modifiers, reserved, 6 keycodes, per spec.md §6.
func (u *USBHIDDevice) HandleKeyboardReport(report [usbHIDKeyboardReportLen]byte) {
	newPressed := make(map[uint8]bool, 6)
	for i := 2; i < usbHIDKeyboardReportLen; i++ {
		hid := report[i]
		if hid == 0 {
			continue
		}
		code := TranslateHIDKeycode(hid)
		if code == usbHIDUnmapped {
			continue
		}
		newPressed[code] = true
	}
	for code := range u.pressed {
		if !newPressed[code] {
			u.State.SetKey(code, false)
		}
	}
	for code := range newPressed {
		u.State.SetKey(code, true)
	}
	u.pressed = newPressed
}

// HandleMouseReport decodes a 3-byte boot-protocol mouse report: buttons,
// dx, dy, per spec.md §6, and clamps to the display bounds.
func (u *USBHIDDevice) HandleMouseReport(report [usbHIDMouseReportLen]byte) {
	u.State.Buttons = report[0] & 0x07
	u.State.X += int16(int8(report[1]))
	u.State.Y += int16(int8(report[2]))
	u.State.ClampMouse(u.displayW, u.displayH)
}

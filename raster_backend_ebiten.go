//go:build !headless

// raster_backend_ebiten.go - host display + input harness, adapted from
// video_backend_ebiten.go's EbitenOutput/Draw/Update/Layout shape. The
// clipboard-paste path and byte-stream key handler are dropped (no
// terminal consumer in this kernel; see DESIGN.md) in favor of feeding
// the USB HID boot-protocol device this kernel already models.

package main

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// HostDisplay presents a *Framebuffer through an Ebiten window and
// samples host keyboard/mouse state into a USBHIDDevice each tick, per
// spec.md §4.6's input pipeline and §4.10.5's rasterizer contract.
type HostDisplay struct {
	fb    *Framebuffer
	image *ebiten.Image

	usb *USBHIDDevice

	mu      sync.Mutex
	running bool

	lastCursorX, lastCursorY int
}

// NewHostDisplay wires a framebuffer and a USB HID device that the
// kernel's event queue polls via usb.State.
func NewHostDisplay(fb *Framebuffer, usb *USBHIDDevice) *HostDisplay {
	return &HostDisplay{fb: fb, usb: usb}
}

// Start opens the Ebiten window and runs its event loop on a background
// goroutine, mirroring EbitenOutput.Start.
func (hd *HostDisplay) Start(title string, scale int) {
	hd.mu.Lock()
	if hd.running {
		hd.mu.Unlock()
		return
	}
	hd.running = true
	hd.mu.Unlock()

	ebiten.SetWindowSize(hd.fb.Width*scale, hd.fb.Height*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)

	go func() {
		_ = ebiten.RunGame(hd)
	}()
}

// Stop marks the display as no longer running; Update returns
// ebiten.Termination on the next tick.
func (hd *HostDisplay) Stop() {
	hd.mu.Lock()
	hd.running = false
	hd.mu.Unlock()
}

// Update implements ebiten.Game: samples the host mouse position/
// buttons and keyboard state into the USB HID device each tick.
func (hd *HostDisplay) Update() error {
	hd.mu.Lock()
	running := hd.running
	hd.mu.Unlock()
	if !running {
		return ebiten.Termination
	}

	hd.sampleMouse()
	hd.sampleKeyboard()
	return nil
}

func (hd *HostDisplay) sampleMouse() {
	x, y := ebiten.CursorPosition()
	var report [usbHIDMouseReportLen]byte
	dx, dy := x-hd.lastCursorX, y-hd.lastCursorY
	hd.lastCursorX, hd.lastCursorY = x, y

	var buttons byte
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		buttons |= 0x01
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		buttons |= 0x02
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle) {
		buttons |= 0x04
	}
	report[0] = buttons
	report[1] = byte(clampDelta(dx))
	report[2] = byte(clampDelta(dy))
	hd.usb.HandleMouseReport(report)
}

func clampDelta(v int) int8 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}

func (hd *HostDisplay) sampleKeyboard() {
	var report [usbHIDKeyboardReportLen]byte
	slot := 2
	for _, key := range ebitenTrackedKeys {
		if slot >= usbHIDKeyboardReportLen {
			break
		}
		if ebiten.IsKeyPressed(key) {
			if hid, ok := ebitenKeyToHIDUsage[key]; ok {
				report[slot] = hid
				slot++
			}
		}
	}
	hd.usb.HandleKeyboardReport(report)
}

// Draw implements ebiten.Game: blits the kernel framebuffer verbatim.
func (hd *HostDisplay) Draw(screen *ebiten.Image) {
	if hd.image == nil {
		hd.image = ebiten.NewImage(hd.fb.Width, hd.fb.Height)
	}
	hd.image.WritePixels(hd.fb.Pix)
	screen.DrawImage(hd.image, nil)
}

// Layout implements ebiten.Game.
func (hd *HostDisplay) Layout(_, _ int) (int, int) {
	return hd.fb.Width, hd.fb.Height
}

// ebitenKeyToHIDUsage maps the alphabet plus the boot-protocol special
// keys to their USB HID usage IDs (the same numeric space
// TranslateHIDKeycode consumes), per spec.md §4.6.
var ebitenKeyToHIDUsage = map[ebiten.Key]uint8{
	ebiten.KeyA: 0x04, ebiten.KeyB: 0x05, ebiten.KeyC: 0x06, ebiten.KeyD: 0x07,
	ebiten.KeyE: 0x08, ebiten.KeyF: 0x09, ebiten.KeyG: 0x0A, ebiten.KeyH: 0x0B,
	ebiten.KeyI: 0x0C, ebiten.KeyJ: 0x0D, ebiten.KeyK: 0x0E, ebiten.KeyL: 0x0F,
	ebiten.KeyM: 0x10, ebiten.KeyN: 0x11, ebiten.KeyO: 0x12, ebiten.KeyP: 0x13,
	ebiten.KeyQ: 0x14, ebiten.KeyR: 0x15, ebiten.KeyS: 0x16, ebiten.KeyT: 0x17,
	ebiten.KeyU: 0x18, ebiten.KeyV: 0x19, ebiten.KeyW: 0x1A, ebiten.KeyX: 0x1B,
	ebiten.KeyY: 0x1C, ebiten.KeyZ: 0x1D,
	ebiten.KeySpace: 0x2C, ebiten.KeyEnter: 0x28, ebiten.KeyEscape: 0x29,
	ebiten.KeyBackspace: 0x2A,
}

var ebitenTrackedKeys = []ebiten.Key{
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
	ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
	ebiten.KeyM, ebiten.KeyN, ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR,
	ebiten.KeyS, ebiten.KeyT, ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX,
	ebiten.KeyY, ebiten.KeyZ, ebiten.KeySpace, ebiten.KeyEnter, ebiten.KeyEscape,
	ebiten.KeyBackspace,
}

// dispatch.go - classify-and-route event dispatcher and find_window, per
// spec.md §4.8. Action-table shape grounded on gui_interface.go's
// dispatch-by-kind pattern; desktop click seam grounded on
// SPEC_FULL.md §4's DesktopHandler supplement (original's
// src/Finder/folder_window.c stays out of tree).

package main

// WindowPart enumerates find_window's hit-test results, per spec.md §4.8.
type WindowPart int

const (
	InDesk WindowPart = iota
	InMenuBar
	InDrag
	InGoAway
	InZoomIn
	InZoomOut
	InGrow
	InContent
)

const growBoxSize = 15

// DesktopHandler is the seam for Finder/desktop click handling; no
// implementation ships in this module (see SPEC_FULL.md §4).
type DesktopHandler interface {
	Click(where Point, double bool)
}

// MenuHandler resolves a command-key shortcut or a menu-bar click to a
// menu command; menu command dispatch itself is an external collaborator
// per spec.md §1, so this is a narrow seam, not a menu implementation.
type MenuHandler interface {
	Select(where Point) bool
	Shortcut(keyCode uint8, modifiers uint16) bool
}

// Dispatcher classifies posted events and routes them, per spec.md §4.8.
type Dispatcher struct {
	Windows *WindowList
	Desktop DesktopHandler
	Menu    MenuHandler

	trackingMenu bool
}

// Dispatch classifies event and routes it per spec.md §4.8's table.
func (d *Dispatcher) Dispatch(ev EventRecord) {
	switch ev.What {
	case MouseDown:
		d.dispatchMouseDown(ev)
	case MouseUp:
		d.dispatchMouseUp(ev)
	case KeyDown, AutoKey:
		d.dispatchKey(ev)
	case UpdateEvt:
		d.dispatchUpdate(ev)
	case ActivateEvt:
		d.dispatchActivate(ev)
	case NullEvent:
		// idle processing (cursor, caret blink, background tracking) —
		// no window-specific routing.
	default:
		// best-effort logging only, per spec.md §4.8.
	}
}

func (d *Dispatcher) dispatchMouseDown(ev EventRecord) {
	part, w := d.FindWindow(ev.Where)
	double := ev.ClickCount() >= 2
	switch part {
	case InMenuBar:
		if d.Menu != nil {
			d.trackingMenu = d.Menu.Select(ev.Where)
		}
	case InDrag:
		if w != nil {
			d.Windows.DragWindow(w, ev.Where)
		}
	case InGoAway:
		if w != nil && w.GoAwayFlag {
			d.Windows.DisposeWindow(w)
		}
	case InZoomIn, InZoomOut:
		if w != nil {
			d.Windows.ZoomWindow(w)
		}
	case InGrow:
		if w != nil {
			d.Windows.GrowWindow(w, ev.Where)
		}
	case InContent:
		if w != nil {
			if d.Windows.Front() != w {
				d.Windows.SelectWindow(w)
			} else if w.ContentClick != nil {
				w.ContentClick(ev.Where, double)
			}
		}
	case InDesk:
		if d.Desktop != nil {
			d.Desktop.Click(ev.Where, double)
		}
	}
}

func (d *Dispatcher) dispatchMouseUp(ev EventRecord) {
	if d.trackingMenu {
		if d.Menu != nil {
			d.Menu.Select(ev.Where)
		}
		d.trackingMenu = false
	}
}

func (d *Dispatcher) dispatchKey(ev EventRecord) {
	keyCode := uint8(ev.Message >> 8)
	if ev.Modifiers&ModCommand != 0 {
		if d.Menu != nil && d.Menu.Shortcut(keyCode, ev.Modifiers) {
			return
		}
	}
	if w := d.Windows.Front(); w != nil && w.KeyDown != nil {
		w.KeyDown(ev)
	}
}

func (d *Dispatcher) dispatchUpdate(ev EventRecord) {
	w := windowFromMessage(ev.Message)
	if w == nil || w.DrawProc == nil {
		return
	}
	d.Windows.BeginUpdate(w)
	w.DrawProc(w)
	d.Windows.EndUpdate(w)
}

func (d *Dispatcher) dispatchActivate(ev EventRecord) {
	w := windowFromMessage(ev.Message)
	if w == nil {
		return
	}
	w.Hilited = ev.Modifiers&ModActive != 0
}

// windowFromMessage recovers the *Window a message carries, per spec.md
// §3: "For update/activate events, message carries the window pointer."
// Windows are addressed by WindowID in this arena-backed kernel rather
// than a raw pointer; the low 32 bits of Message carry that ID.
func windowFromMessage(message uint32) *Window {
	return lookupWindowByID(WindowID(message))
}

// FindWindow iterates the window list front-to-back; for each window,
// checks if the global point lies in the title bar (drag), close box
// (goAway), zoom box, grow box (bottom-right 15x15), or content. First
// hit wins. If no window hit, returns inDesk. Per spec.md §4.8.
func (d *Dispatcher) FindWindow(where Point) (WindowPart, *Window) {
	if d.Windows == nil {
		return InDesk, nil
	}
	for w := d.Windows.Front(); w != nil; w = d.Windows.Next(w) {
		if !w.Visible {
			continue
		}
		if !PtInRect(where, w.StrucRgn.BBox) {
			continue
		}
		if part, ok := hitTestChrome(w, where); ok {
			return part, w
		}
		if PtInRegion(where, w.ContRgn) {
			return InContent, w
		}
	}
	return InDesk, nil
}

func hitTestChrome(w *Window, where Point) (WindowPart, bool) {
	frame := w.StrucRgn.BBox
	titleBar := Rect{Top: frame.Top, Left: frame.Left, Bottom: frame.Top + titleBarHeight, Right: frame.Right}
	if PtInRect(where, titleBar) {
		closeBox := Rect{Top: frame.Top + 4, Left: frame.Left + 4, Bottom: frame.Top + 16, Right: frame.Left + 16}
		if PtInRect(where, closeBox) {
			return InGoAway, true
		}
		zoomBox := Rect{Top: frame.Top + 4, Left: frame.Right - 16, Bottom: frame.Top + 16, Right: frame.Right - 4}
		if PtInRect(where, zoomBox) {
			if w.Zoomed {
				return InZoomIn, true
			}
			return InZoomOut, true
		}
		return InDrag, true
	}
	growBox := Rect{
		Top:    frame.Bottom - growBoxSize,
		Left:   frame.Right - growBoxSize,
		Bottom: frame.Bottom,
		Right:  frame.Right,
	}
	if PtInRect(where, growBox) {
		return InGrow, true
	}
	return InDesk, false
}

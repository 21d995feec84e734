// window_list.go - z-order window list, lifecycle, coordinate discipline,
// and drag/grow/zoom, per spec.md §4.10. Z-order grounded on
// machine_bus.go's device-list iteration pattern, generalized from a
// fixed bus slice to an ordered front-to-back slice with insert-behind.

package main

// MouseSampler is polled once per drag/grow pump iteration to read the
// live mouse position and button state, per spec.md §4.10.3.
type MouseSampler func() (pt Point, down bool)

// DragPainter draws the self-erasing XOR outline at the candidate
// position on each pump iteration, per spec.md §4.10.3.
type DragPainter func(outline Rect)

// WindowList is the z-ordered front-to-back list of open windows, per
// spec.md §3.
type WindowList struct {
	windows []*Window

	// ScreenBounds is the desktop's global extent, used as ZoomWindow's
	// target rect.
	ScreenBounds Rect

	Sampler MouseSampler
	Painter DragPainter
}

// Front returns the frontmost window, or nil if none are open.
func (wl *WindowList) Front() *Window {
	if len(wl.windows) == 0 {
		return nil
	}
	return wl.windows[0]
}

// Next returns the window immediately behind w in z-order, or nil if w
// is the backmost window or not found.
func (wl *WindowList) Next(w *Window) *Window {
	for i, cur := range wl.windows {
		if cur == w {
			if i+1 < len(wl.windows) {
				return wl.windows[i+1]
			}
			return nil
		}
	}
	return nil
}

func (wl *WindowList) indexOf(w *Window) int {
	for i, cur := range wl.windows {
		if cur == w {
			return i
		}
	}
	return -1
}

// NewWindow implements spec.md §4.10.1's new_window: allocates the
// record, initializes the local portRect, maps portBits.bounds to the
// global content top-left (border=1, title=20, separator=1 below the
// frame's top-left), builds strucRgn/contRgn/updateRgn, and inserts the
// window into the z-order behind the named window (or at front).
func (wl *WindowList) NewWindow(bounds Rect, title string, visible bool, windowKind int, behind *Window, goAway bool, refCon interface{}) *Window {
	content := contentRectFor(bounds)

	win := &Window{
		id:         nextWindowID,
		Title:      title,
		WindowKind: windowKind,
		Visible:    visible,
		GoAwayFlag: goAway,
		RefCon:     refCon,
	}
	nextWindowID++
	windowArena[win.id] = win

	win.Port = GrafPort{
		PortRect: Rect{Top: 0, Left: 0, Bottom: content.Bottom - content.Top, Right: content.Right - content.Left},
		PortBits: BitMap{Bounds: content},
		PnPat:    BlackPattern,
		PnVis:    1,
	}
	win.StrucRgn = SetRect(bounds)
	win.ContRgn = SetRect(content)
	win.UpdateRgn = Region{}
	win.Port.ClipRgn = win.ContRgn
	win.Port.VisRgn = win.ContRgn

	wl.insertBehind(win, behind)

	if visible {
		win.UpdateRgn = win.ContRgn
	}
	return win
}

func (wl *WindowList) insertBehind(w *Window, behind *Window) {
	if behind == nil {
		wl.windows = append([]*Window{w}, wl.windows...)
		return
	}
	idx := wl.indexOf(behind)
	if idx < 0 {
		wl.windows = append(wl.windows, w)
		return
	}
	insertAt := idx + 1
	wl.windows = append(wl.windows, nil)
	copy(wl.windows[insertAt+1:], wl.windows[insertAt:])
	wl.windows[insertAt] = w
}

// DisposeWindow implements spec.md §4.10.1's dispose_window: removes w
// from the z-order, invalidates the area it covered on windows below,
// and frees its arena slot.
func (wl *WindowList) DisposeWindow(w *Window) {
	idx := wl.indexOf(w)
	if idx < 0 {
		return
	}
	for _, below := range wl.windows[idx+1:] {
		if !below.Visible {
			continue
		}
		exposed := Intersect(w.StrucRgn, below.StrucRgn)
		if exposed.BBox.Empty() {
			continue
		}
		below.UpdateRgn = Union(below.UpdateRgn, exposed)
	}
	wl.windows = append(wl.windows[:idx], wl.windows[idx+1:]...)
	delete(windowArena, w.id)
}

// Move implements spec.md §4.10.2's move discipline: shift portBits
// bounds, strucRgn, and contRgn; portRect is never touched.
func (wl *WindowList) Move(w *Window, dx, dy int16) {
	w.Port.PortBits.Bounds = Rect{
		Top: w.Port.PortBits.Bounds.Top + dy, Left: w.Port.PortBits.Bounds.Left + dx,
		Bottom: w.Port.PortBits.Bounds.Bottom + dy, Right: w.Port.PortBits.Bounds.Right + dx,
	}
	w.StrucRgn = Offset(w.StrucRgn, dx, dy)
	w.ContRgn = Offset(w.ContRgn, dx, dy)
}

// Resize implements spec.md §4.10.2's resize discipline: portRect is set
// to (0,0,width,height); portBits.bounds' bottom/right follow; regions
// are rebuilt from the window's (unchanged) top-left corner.
func (wl *WindowList) Resize(w *Window, width, height int16) {
	top, left := w.StrucRgn.BBox.Top, w.StrucRgn.BBox.Left
	contentTop := top + windowTitleHeight + windowSeparator
	contentLeft := left + windowBorder
	content := Rect{Top: contentTop, Left: contentLeft, Bottom: contentTop + height, Right: contentLeft + width}

	w.Port.PortRect = Rect{Top: 0, Left: 0, Bottom: height, Right: width}
	w.Port.PortBits.Bounds = content
	w.ContRgn = SetRect(content)
	w.StrucRgn = SetRect(Rect{Top: top, Left: left, Bottom: content.Bottom + windowBorder, Right: content.Right + windowBorder})
}

// contentRectFor derives the global content rect from a window frame,
// per spec.md §4.10.1 step 3: local (0,0) maps to
// (gx+border, gy+title+separator); the content area closes with a
// border-width margin on the right and bottom edges too.
func contentRectFor(frame Rect) Rect {
	return Rect{
		Top:    frame.Top + windowTitleHeight + windowSeparator,
		Left:   frame.Left + windowBorder,
		Bottom: frame.Bottom - windowBorder,
		Right:  frame.Right - windowBorder,
	}
}

// DragWindow implements spec.md §4.10.3: while the sampled mouse button
// remains down, repaints a self-erasing XOR outline at the candidate
// position each pump iteration; on mouse-up, commits the move.
func (wl *WindowList) DragWindow(w *Window, startPt Point) {
	if wl.Sampler == nil {
		return
	}
	origin := w.StrucRgn.BBox
	lastDx, lastDy := int16(0), int16(0)
	for {
		pt, down := wl.Sampler()
		if !down {
			break
		}
		lastDx, lastDy = pt.H-startPt.H, pt.V-startPt.V
		if wl.Painter != nil {
			wl.Painter(Rect{Top: origin.Top + lastDy, Left: origin.Left + lastDx, Bottom: origin.Bottom + lastDy, Right: origin.Right + lastDx})
		}
	}
	wl.Move(w, lastDx, lastDy)
}

// GrowWindow implements spec.md §4.10.3's resize-drag: same pattern as
// DragWindow, with the candidate size clamped to sizeRect.
func (wl *WindowList) GrowWindow(w *Window, startPt Point, sizeRect Rect) {
	if wl.Sampler == nil {
		return
	}
	origin := w.StrucRgn.BBox
	width, height := origin.Right-origin.Left, origin.Bottom-origin.Top
	for {
		pt, down := wl.Sampler()
		if !down {
			break
		}
		width = clampInt16(origin.Right-origin.Left+(pt.H-startPt.H), sizeRect.Left, sizeRect.Right)
		height = clampInt16(origin.Bottom-origin.Top+(pt.V-startPt.V), sizeRect.Top, sizeRect.Bottom)
		if wl.Painter != nil {
			wl.Painter(Rect{Top: origin.Top, Left: origin.Left, Bottom: origin.Top + height, Right: origin.Left + width})
		}
	}
	// width/height are frame dimensions; Resize takes content dimensions.
	wl.Resize(w, width-2*windowBorder, height-(windowTitleHeight+windowSeparator+windowBorder))
}

func clampInt16(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ZoomWindow toggles between the window's user-set bounds and
// wl.ScreenBounds, per spec.md §4.8's zoom box part codes (the zoom
// mechanism itself is a REDESIGN FLAG supplement — see DESIGN.md).
func (wl *WindowList) ZoomWindow(w *Window) {
	if !w.Zoomed {
		w.zoomedFrom = w.StrucRgn.BBox
		w.Zoomed = true
		wl.setFrame(w, wl.ScreenBounds)
		return
	}
	w.Zoomed = false
	wl.setFrame(w, w.zoomedFrom)
}

// setFrame assigns the window's exact global frame, recomputing the
// content rect via contentRectFor rather than going through Resize
// (whose width/height parameters are content-space, not frame-space).
func (wl *WindowList) setFrame(w *Window, frame Rect) {
	content := contentRectFor(frame)
	w.StrucRgn = SetRect(frame)
	w.ContRgn = SetRect(content)
	w.Port.PortBits.Bounds = content
	w.Port.PortRect = Rect{Top: 0, Left: 0, Bottom: content.Bottom - content.Top, Right: content.Right - content.Left}
}

// SelectWindow brings w to the front of the z-order; activate/deactivate
// event posting is the dispatcher's responsibility (spec.md §4.8).
func (wl *WindowList) SelectWindow(w *Window) {
	idx := wl.indexOf(w)
	if idx <= 0 {
		return
	}
	wl.windows = append(wl.windows[:idx], wl.windows[idx+1:]...)
	wl.windows = append([]*Window{w}, wl.windows...)
}

// BeginUpdate implements spec.md §4.10.4: sets the port's clip to
// visRgn intersected with updateRgn so the subsequent DrawProc call only
// paints the invalidated area. The clip in force before the call is not
// saved.
func (wl *WindowList) BeginUpdate(w *Window) {
	w.updating = true
	w.Port.ClipRgn = Intersect(w.Port.VisRgn, w.UpdateRgn)
}

// EndUpdate resets the port's clip to visRgn (not to whatever clip was
// set before BeginUpdate) and empties updateRgn, per spec.md §4.10.4.
func (wl *WindowList) EndUpdate(w *Window) {
	w.Port.ClipRgn = w.Port.VisRgn
	w.UpdateRgn = Region{}
	w.updating = false
}

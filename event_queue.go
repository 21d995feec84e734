// event_queue.go - bounded event queue with PostEvent/GetNextEvent/
// WaitNextEvent, multi-click detection, and modal tracking guard. Locking
// discipline grounded on memory_bus.go's mutex-protected shared state,
// specialized here to the interrupt-disable critical section spec.md §5
// requires rather than a plain mutex, since PostEvent must be IRQ-safe.

package main

const defaultEventQueueCapacity = 32

// EventQueue is a bounded, IRQ-safe event queue: PostEvent appends under
// an interrupt-disabled critical section (§5 "queue append is serialized
// under irq_disable"); consumers read the same way.
type EventQueue struct {
	pal PAL

	buf   []EventRecord
	head  int
	count int

	mouse   DeviceState
	keymap  [16]byte
	ticks   func() uint32

	lastClickWhen  uint32
	lastClickWhere Point
	clickCount     uint16

	// inMouseTracking is the kernel-global boolean from spec.md §4.7
	// that suppresses mouseDown/mouseUp posting during a drag/resize
	// loop.
	inMouseTracking bool

	// suppressedKinds additionally lets a modal-tracking region name
	// other event kinds to drop globally, per spec.md §4.7's "globally
	// suppressed that event kind".
	suppressedKinds EventMask

	doubleClickThreshold uint32
	clickSlop            int16
}

// NewEventQueue constructs a queue of defaultEventQueueCapacity records,
// sourcing tick counts from ticks (normally timer.TickCount).
func NewEventQueue(pal PAL, ticks func() uint32, doubleClickThreshold uint32, clickSlop int16) *EventQueue {
	return &EventQueue{
		pal:                  pal,
		buf:                  make([]EventRecord, defaultEventQueueCapacity),
		ticks:                ticks,
		doubleClickThreshold: doubleClickThreshold,
		clickSlop:            clickSlop,
	}
}

// PostEvent appends an event if the queue is not full and the caller is
// not inside a modal-tracking region that has globally suppressed that
// event kind, per spec.md §4.7.
func (q *EventQueue) PostEvent(what EventKind, message uint32, where Point, modifiers uint16) bool {
	flags := q.pal.IRQDisable()
	defer q.pal.IRQRestore(flags)

	if q.suppressedKinds.Matches(what) {
		return false
	}
	if q.count >= len(q.buf) {
		return false
	}

	idx := (q.head + q.count) % len(q.buf)
	q.buf[idx] = EventRecord{What: what, Message: message, When: q.ticks(), Where: where, Modifiers: modifiers}
	q.count++
	return true
}

// GetNextEvent returns the oldest event matching mask and removes it; if
// none, returns a synthetic nullEvent with current mouse position and
// tick count, per spec.md §4.7.
func (q *EventQueue) GetNextEvent(mask EventMask) EventRecord {
	flags := q.pal.IRQDisable()
	defer q.pal.IRQRestore(flags)

	for i := 0; i < q.count; i++ {
		idx := (q.head + i) % len(q.buf)
		if mask.Matches(q.buf[idx].What) {
			ev := q.buf[idx]
			q.removeAtLocked(i)
			return ev
		}
	}
	return EventRecord{
		What:  NullEvent,
		When:  q.ticks(),
		Where: Point{H: q.mouse.X, V: q.mouse.Y},
	}
}

func (q *EventQueue) removeAtLocked(i int) {
	for j := i; j < q.count-1; j++ {
		from := (q.head + j + 1) % len(q.buf)
		to := (q.head + j) % len(q.buf)
		q.buf[to] = q.buf[from]
	}
	q.count--
}

// IdlePump is the cooperative scheduler step run from WaitNextEvent's
// yield path: idle tasks (caret blink, cursor animation) and, if pal is
// non-nil, an optional CPU halt until the next interrupt. Per spec.md §5.
type IdlePump func()

// WaitNextEvent returns the same result as GetNextEvent, but if no event
// is immediately available it yields via pump (idle tasks, cursor
// animation, optional PAL halt) before trying again once, per spec.md
// §4.7.
func (q *EventQueue) WaitNextEvent(mask EventMask, pump IdlePump) EventRecord {
	ev := q.GetNextEvent(mask)
	if ev.What != NullEvent {
		return ev
	}
	if pump != nil {
		pump()
	}
	return q.GetNextEvent(mask)
}

// UpdateMouseState feeds DeviceState into the queue's tracked mouse
// position used by the synthetic nullEvent, and runs multi-click
// detection on a 0->1 button transition, posting mouseDown.
func (q *EventQueue) UpdateMouseState(state DeviceState) {
	prevButtons := q.mouse.Buttons
	q.mouse = state

	if q.inMouseTracking {
		return
	}

	transitioned := prevButtons&1 == 0 && state.Buttons&1 != 0
	if !transitioned {
		return
	}

	now := q.ticks()
	where := Point{H: state.X, V: state.Y}
	q.recomputeClickCountLocked(now, where)

	q.PostEvent(MouseDown, mouseMessage(q.clickCount, 0), where, 0)
}

// PostMouseUp posts a mouseUp event carrying the same click count as the
// preceding mouseDown; mouseUp does NOT reset the count, per spec.md
// §4.7.
func (q *EventQueue) PostMouseUp(where Point) {
	if q.inMouseTracking {
		return
	}
	q.PostEvent(MouseUp, mouseMessage(q.clickCount, 0), where, 0)
}

// recomputeClickCountLocked implements spec.md §4.7's multi-click rule:
// on a 0->1 transition, if delta-ticks <= doubleClickThreshold and
// delta-x/y <= slop since the last click, increment the click count
// (capped at 3); otherwise reset to 1.
func (q *EventQueue) recomputeClickCountLocked(now uint32, where Point) {
	deltaTicks := now - q.lastClickWhen
	dx := where.H - q.lastClickWhere.H
	dy := where.V - q.lastClickWhere.V
	within := deltaTicks <= q.doubleClickThreshold && abs16(dx) <= q.clickSlop && abs16(dy) <= q.clickSlop

	if within && q.clickCount > 0 {
		if q.clickCount < 3 {
			q.clickCount++
		}
	} else {
		q.clickCount = 1
	}
	q.lastClickWhen = now
	q.lastClickWhere = where
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// BeginMouseTracking sets the modal tracking guard, suppressing posting
// of mouseDown/mouseUp while a drag or resize loop owns the mouse, per
// spec.md §4.7.
func (q *EventQueue) BeginMouseTracking() {
	flags := q.pal.IRQDisable()
	q.inMouseTracking = true
	q.pal.IRQRestore(flags)
}

// EndMouseTracking clears the modal tracking guard.
func (q *EventQueue) EndMouseTracking() {
	flags := q.pal.IRQDisable()
	q.inMouseTracking = false
	q.pal.IRQRestore(flags)
}

// InMouseTracking reports the current modal-tracking state.
func (q *EventQueue) InMouseTracking() bool { return q.inMouseTracking }

// SuppressKinds globally suppresses posting of the given event kinds
// until restored via AllowKinds, per spec.md §4.7.
func (q *EventQueue) SuppressKinds(mask EventMask) {
	flags := q.pal.IRQDisable()
	q.suppressedKinds |= mask
	q.pal.IRQRestore(flags)
}

// AllowKinds clears a previously suppressed mask.
func (q *EventQueue) AllowKinds(mask EventMask) {
	flags := q.pal.IRQDisable()
	q.suppressedKinds &^= mask
	q.pal.IRQRestore(flags)
}

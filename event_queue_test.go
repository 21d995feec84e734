package main

import "testing"

func newTestEventQueue() (*EventQueue, *uint32) {
	var now uint32
	q := NewEventQueue(NewPAL(), func() uint32 { return now }, 15, 3)
	return q, &now
}

// TestPostAndGetNextEvent verifies the basic FIFO contract and mask
// filtering from spec.md §4.7.
func TestPostAndGetNextEvent(t *testing.T) {
	q, _ := newTestEventQueue()
	q.PostEvent(KeyDown, 0x41, Point{}, 0)
	q.PostEvent(MouseDown, 0, Point{H: 10, V: 20}, 0)

	ev := q.GetNextEvent(maskBit(MouseDown))
	if ev.What != MouseDown || ev.Where.H != 10 {
		t.Fatalf("got %+v, want MouseDown at H=10", ev)
	}

	ev = q.GetNextEvent(EverythingMask)
	if ev.What != KeyDown {
		t.Fatalf("got %+v, want KeyDown", ev)
	}

	ev = q.GetNextEvent(EverythingMask)
	if ev.What != NullEvent {
		t.Fatalf("got %+v, want synthetic NullEvent on empty queue", ev)
	}
}

// TestQueueFullDropsEvent verifies spec.md §4.7: PostEvent "appends if
// the queue is not full."
func TestQueueFullDropsEvent(t *testing.T) {
	q, _ := newTestEventQueue()
	for i := 0; i < defaultEventQueueCapacity; i++ {
		if !q.PostEvent(KeyDown, uint32(i), Point{}, 0) {
			t.Fatalf("unexpected drop at %d", i)
		}
	}
	if q.PostEvent(KeyDown, 999, Point{}, 0) {
		t.Fatalf("expected drop once queue is full")
	}
}

// TestMultiClickDetection verifies spec.md §4.7: rapid same-position
// clicks within the threshold increment click count, capped at 3; a
// distant or slow click resets to 1.
func TestMultiClickDetection(t *testing.T) {
	q, now := newTestEventQueue()

	state := DeviceState{X: 50, Y: 50, Buttons: 1}
	q.UpdateMouseState(state)
	ev := q.GetNextEvent(maskBit(MouseDown))
	if ev.ClickCount() != 1 {
		t.Fatalf("first click count = %d, want 1", ev.ClickCount())
	}

	// Button up, then a fast same-position click within threshold+slop.
	q.UpdateMouseState(DeviceState{X: 50, Y: 50, Buttons: 0})
	*now = 5
	q.UpdateMouseState(DeviceState{X: 51, Y: 50, Buttons: 1})
	ev = q.GetNextEvent(maskBit(MouseDown))
	if ev.ClickCount() != 2 {
		t.Fatalf("second click count = %d, want 2", ev.ClickCount())
	}

	// A click far past the threshold resets to 1.
	q.UpdateMouseState(DeviceState{X: 51, Y: 50, Buttons: 0})
	*now = 100
	q.UpdateMouseState(DeviceState{X: 51, Y: 50, Buttons: 1})
	ev = q.GetNextEvent(maskBit(MouseDown))
	if ev.ClickCount() != 1 {
		t.Fatalf("late click count = %d, want reset to 1", ev.ClickCount())
	}
}

// TestModalTrackingSuppressesMouseEvents verifies spec.md §4.7's modal
// tracking guard: no mouseDown/mouseUp is posted while tracking is active.
func TestModalTrackingSuppressesMouseEvents(t *testing.T) {
	q, _ := newTestEventQueue()
	q.BeginMouseTracking()
	q.UpdateMouseState(DeviceState{X: 10, Y: 10, Buttons: 1})
	q.PostMouseUp(Point{H: 10, V: 10})
	q.EndMouseTracking()

	ev := q.GetNextEvent(EverythingMask)
	if ev.What != NullEvent {
		t.Fatalf("expected no events posted during tracking, got %+v", ev)
	}
}

// TestWaitNextEventRunsPumpOnEmptyQueue verifies spec.md §4.7's yield
// path runs the cooperative pump when no event is immediately available.
func TestWaitNextEventRunsPumpOnEmptyQueue(t *testing.T) {
	q, _ := newTestEventQueue()
	pumped := false
	ev := q.WaitNextEvent(EverythingMask, func() { pumped = true })
	if !pumped {
		t.Fatalf("expected pump to run on empty queue")
	}
	if ev.What != NullEvent {
		t.Fatalf("expected NullEvent, got %+v", ev)
	}
}

package events

import (
	"errors"
	"testing"
)

func TestPublishInRegistrationOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(func(Event) error { order = append(order, 1); return nil }, EventFinal)
	bus.Subscribe(func(Event) error { order = append(order, 2); return errors.New("boom") }, EventFinal)
	bus.Subscribe(func(Event) error { order = append(order, 3); return nil }, EventFinal)

	bus.Publish(New(EventFinal, "m1", 10, FinalEvent{}))

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("order = %v, want [1 2 3]", order)
	}
}

func TestSubscribeMultipleTypes(t *testing.T) {
	bus := NewBus()
	got := map[EventType]int{}
	bus.Subscribe(func(e Event) error { got[e.Type]++; return nil }, EventPeriodStart, EventOvertime)

	bus.Publish(New(EventPeriodStart, "m1", 1, PeriodEvent{Period: 2}))
	bus.Publish(New(EventOvertime, "m1", 2, PeriodEvent{Period: 4}))
	bus.Publish(New(EventPuckPop, "m1", 3, PuckPopEvent{}))

	if got[EventPeriodStart] != 1 || got[EventOvertime] != 1 || got[EventPuckPop] != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestNewStampsIDs(t *testing.T) {
	a := New(EventSnapshot, "m", 1, nil)
	b := New(EventSnapshot, "m", 1, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if a.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}

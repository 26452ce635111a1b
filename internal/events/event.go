package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the envelope that flows through the event bus.
// Every match event (period change, pop, final, progression) is wrapped in one.
type Event struct {
	ID        string
	Type      EventType
	MatchID   string
	Tick      int
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	// Frame loop
	EventSnapshot    EventType = "snapshot"
	EventPeriodStart EventType = "period_start"
	EventOvertime    EventType = "overtime"
	EventFinal       EventType = "final"
	EventPuckPop     EventType = "puck_pop"
	// Progression
	EventInjury EventType = "injury"
	EventXP     EventType = "xp"
)

// New stamps a fresh id and the current time.
func New(typ EventType, matchID string, tick int, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		MatchID:   matchID,
		Tick:      tick,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

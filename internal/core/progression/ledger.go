package progression

import (
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

// Ledger awards XP against the store. The per-match action count lives in
// the store, so diminishing returns survive restarts mid-match.
type Ledger struct {
	store *Store
	bus   *events.Bus
}

// NewLedger wraps store. bus may be nil.
func NewLedger(store *Store, bus *events.Bus) *Ledger {
	return &Ledger{store: store, bus: bus}
}

func (l *Ledger) Store() *Store { return l.store }

// Award grants one use of action to playerID in matchID. The count read
// and the insert happen under one lock so concurrent awards never see the
// same count.
func (l *Ledger) Award(matchID, playerID string, tick int, action sim.Action) (XPAward, error) {
	l.store.mu.Lock()
	count, err := l.store.actionCountLocked(matchID, playerID, action)
	if err != nil {
		l.store.mu.Unlock()
		return XPAward{}, err
	}
	a := XPAward{
		MatchID:  matchID,
		PlayerID: playerID,
		Action:   action,
		Count:    count,
		XP:       sim.XPForAction(action, count),
	}
	err = l.store.insertXPLocked(a)
	l.store.mu.Unlock()
	if err != nil {
		return XPAward{}, err
	}

	telemetry.Metrics.XPAwarded.Inc()
	if l.bus != nil {
		l.bus.Publish(events.New(events.EventXP, matchID, tick, events.XPEvent{
			PlayerID: playerID,
			Action:   string(action),
			Count:    count,
			XP:       a.XP,
		}))
	}
	return a, nil
}

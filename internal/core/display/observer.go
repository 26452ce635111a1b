package display

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charleschow/arcade-hockey/internal/core/state/match"
	"github.com/charleschow/arcade-hockey/internal/events"
)

const popDisplayThrottle = 5 * time.Second

// Observer implements match.Observer and prints a scoreboard block on
// period changes and the final. Puck pops are printed at most once per
// popDisplayThrottle per match.
type Observer struct {
	out     io.Writer
	mu      sync.Mutex
	lastPop map[string]time.Time
}

// NewObserver prints to out, or to stderr when out is nil.
func NewObserver(out io.Writer) *Observer {
	if out == nil {
		out = os.Stderr
	}
	return &Observer{
		out:     out,
		lastPop: make(map[string]time.Time),
	}
}

func (d *Observer) OnMatchEvent(mc *match.MatchContext, kind events.EventType) {
	switch kind {
	case events.EventPeriodStart, events.EventOvertime:
	case events.EventPuckPop:
		d.mu.Lock()
		last, ok := d.lastPop[mc.ID]
		if ok && time.Since(last) < popDisplayThrottle {
			d.mu.Unlock()
			return
		}
		d.lastPop[mc.ID] = time.Now()
		d.mu.Unlock()
	case events.EventFinal:
		d.mu.Lock()
		delete(d.lastPop, mc.ID)
		d.mu.Unlock()
	default:
		return
	}

	f := mc.Facade()
	snap := f.Snapshot()
	clock := f.Clock()
	fmt.Fprint(d.out, Format(Scoreboard{
		MatchID: mc.ID,
		Preset:  mc.Settings.Preset,
		Event:   string(kind),
		Tick:    snap.Tick,
		Period:  snap.Period,
		Phase:   snap.Phase,
		ClockMs: clock.ClockMs,
		Home:    snap.Score.Home,
		Away:    snap.Score.Away,
		Pops:    f.Pops(),
		Puck:    f.Puck(),
	}))
}

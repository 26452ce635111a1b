package match

import (
	"github.com/charleschow/arcade-hockey/internal/events"
)

// BusObserver republishes match events on the in-process bus with typed
// payloads, so transport and notification layers never touch the facade.
type BusObserver struct {
	bus *events.Bus
}

func NewBusObserver(bus *events.Bus) *BusObserver {
	return &BusObserver{bus: bus}
}

func (o *BusObserver) OnMatchEvent(mc *MatchContext, kind events.EventType) {
	f := mc.Facade()
	snap := f.Snapshot()

	var payload any
	switch kind {
	case events.EventSnapshot:
		clock, puck := f.Clock(), f.Puck()
		payload = events.SnapshotEvent{
			Tick:      snap.Tick,
			HomeScore: snap.Score.Home,
			AwayScore: snap.Score.Away,
			Period:    snap.Period,
			Phase:     string(snap.Phase),
			ClockMs:   clock.ClockMs,
			PuckX:     puck.Pos.X,
			PuckY:     puck.Pos.Y,
			PuckVX:    puck.Vel.X,
			PuckVY:    puck.Vel.Y,
		}
	case events.EventPeriodStart, events.EventOvertime:
		payload = events.PeriodEvent{Period: snap.Period, Phase: string(snap.Phase)}
	case events.EventPuckPop:
		vel := f.Puck().Vel
		payload = events.PuckPopEvent{VX: vel.X, VY: vel.Y, Total: f.Pops()}
	case events.EventFinal:
		payload = events.FinalEvent{
			HomeScore: snap.Score.Home,
			AwayScore: snap.Score.Away,
			Ticks:     snap.Tick,
			Seed:      mc.Settings.Start.Seed,
			Pops:      f.Pops(),
		}
	default:
		return
	}

	o.bus.Publish(events.New(kind, mc.ID, snap.Tick, payload))
}

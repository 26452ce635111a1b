package progression

import (
	"hash/fnv"
	"slices"
	"time"

	"github.com/charleschow/arcade-hockey/internal/core/rng"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/core/state/match"
	"github.com/charleschow/arcade-hockey/internal/events"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

// Observer implements match.Observer. When a match goes final it records
// the result, then for every registered player awards participation (and
// result XP to the winning side) and rolls an injury.
type Observer struct {
	ledger *Ledger
	bus    *events.Bus
}

// NewObserver builds the end-of-match observer. bus may be nil.
func NewObserver(ledger *Ledger, bus *events.Bus) *Observer {
	return &Observer{ledger: ledger, bus: bus}
}

func (o *Observer) OnMatchEvent(mc *match.MatchContext, kind events.EventType) {
	if kind != events.EventFinal {
		return
	}

	f := mc.Facade()
	snap := f.Snapshot()
	seed := mc.Settings.Start.Seed

	err := o.ledger.store.InsertResult(MatchResult{
		MatchID:    mc.ID,
		Preset:     mc.Settings.Preset,
		Seed:       seed,
		Ticks:      snap.Tick,
		HomeScore:  snap.Score.Home,
		AwayScore:  snap.Score.Away,
		Pops:       f.Pops(),
		FinishedAt: time.Now(),
	})
	if err != nil {
		telemetry.Warnf("progression: match %s: %v", mc.ID, err)
		return
	}

	winner := snap.Score.Winner()
	players := mc.Players()
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		o.settlePlayer(mc, id, players[id], winner, snap.Tick)
	}
}

func (o *Observer) settlePlayer(mc *match.MatchContext, playerID string, team, winner sim.Team, tick int) {
	if _, err := o.ledger.Award(mc.ID, playerID, tick, sim.ActionParticipation); err != nil {
		telemetry.Warnf("progression: participation for %s: %v", playerID, err)
		return
	}
	if winner != sim.TeamNone && team == winner {
		if _, err := o.ledger.Award(mc.ID, playerID, tick, sim.ActionResult); err != nil {
			telemetry.Warnf("progression: result xp for %s: %v", playerID, err)
		}
	}

	// Ties have no loser: both sides roll at the winner's odds.
	loser := winner != sim.TeamNone && team == winner.Opponent()
	r := rng.New(PlayerSeed(mc.Settings.Start.Seed, playerID))
	inj, ok := sim.RollInjury(r, loser, mc.Settings.Injury)
	if !ok {
		return
	}

	played, err := o.ledger.store.MatchesPlayed(playerID)
	if err != nil {
		telemetry.Warnf("progression: %v", err)
		return
	}
	rec := InjuryRecord{
		MatchID:   mc.ID,
		PlayerID:  playerID,
		Team:      team,
		Injury:    inj,
		Seq:       played,
		Remaining: inj.MatchesOut,
	}
	if err := o.ledger.store.InsertInjury(rec); err != nil {
		telemetry.Warnf("progression: %v", err)
		return
	}

	telemetry.Metrics.InjuriesRolled.Inc()
	telemetry.Match(mc.ID).Info("injury",
		"player", playerID, "part", inj.BodyPart, "type", inj.Type, "out", inj.MatchesOut)

	if o.bus != nil {
		o.bus.Publish(events.New(events.EventInjury, mc.ID, tick, events.InjuryEvent{
			PlayerID:   playerID,
			Team:       string(team),
			BodyPart:   string(inj.BodyPart),
			Type:       string(inj.Type),
			MatchesOut: inj.MatchesOut,
		}))
	}
}

// PlayerSeed derives a per-player injury seed from the match seed so a
// player's roll does not depend on who else was in the match.
func PlayerSeed(matchSeed int64, playerID string) int64 {
	h := fnv.New32a()
	h.Write([]byte(playerID))
	return int64(uint32(matchSeed) ^ h.Sum32())
}

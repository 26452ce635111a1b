package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charleschow/arcade-hockey/internal/config"
	"github.com/charleschow/arcade-hockey/internal/core/display"
	"github.com/charleschow/arcade-hockey/internal/core/facade"
	"github.com/charleschow/arcade-hockey/internal/core/playerid"
	"github.com/charleschow/arcade-hockey/internal/core/progression"
	"github.com/charleschow/arcade-hockey/internal/core/rng"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
)

type player struct {
	id   string
	team sim.Team
}

func main() {
	seed := flag.Int64("seed", 1, "match seed")
	presetName := flag.String("preset", "arcade", "match preset name")
	presetsPath := flag.String("presets", "internal/config/match_presets.yaml", "path to match presets")
	dt := flag.Float64("dt", 16, "frame delta in ms")
	maxTicks := flag.Int("max-ticks", 100000, "stop after this many ticks")
	players := flag.String("players", "", "comma-separated id:team list to roll end-of-match injuries for")
	verbose := flag.Bool("v", false, "print a scoreboard for every pop")
	flag.Parse()

	presets, err := config.LoadMatchPresets(*presetsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "presets: %v\n", err)
		os.Exit(1)
	}
	preset, err := presets.Preset(*presetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v (have %v)\n", err, presets.Names())
		os.Exit(1)
	}
	roster, err := parsePlayers(*players)
	if err != nil {
		fmt.Fprintf(os.Stderr, "players: %v\n", err)
		os.Exit(1)
	}

	f := facade.New()
	f.StartMatch(preset.StartConfig(*seed))

	board := func(event string) {
		snap, clock := f.Snapshot(), f.Clock()
		fmt.Print(display.Format(display.Scoreboard{
			MatchID: fmt.Sprintf("seed-%d", *seed),
			Preset:  *presetName,
			Event:   event,
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

	for f.Snapshot().Tick < *maxTicks {
		before := f.Snapshot()
		res := f.Tick(*dt)
		after := f.Snapshot()

		if after.Phase == sim.PhaseRegulation && after.Period > before.Period {
			board("period_start")
		}
		if before.Phase == sim.PhaseRegulation && after.Phase != sim.PhaseRegulation {
			board("overtime")
		}
		if res.Popped && *verbose {
			board("puck_pop")
		}
		if after.Phase == sim.PhaseFinal {
			board("final")
			break
		}
	}

	snap := f.Snapshot()
	if snap.Phase != sim.PhaseFinal {
		fmt.Printf("stopped at tick %d before final (phase %s, period %d)\n", snap.Tick, snap.Phase, snap.Period)
	}
	fmt.Printf("seed=%d preset=%s ticks=%d pops=%d score=%d-%d\n",
		*seed, *presetName, snap.Tick, f.Pops(), snap.Score.Home, snap.Score.Away)

	winner := snap.Score.Winner()
	injuryCfg := preset.InjuryConfig()
	for _, p := range roster {
		loser := winner != sim.TeamNone && p.team == winner.Opponent()
		inj, ok := sim.RollInjury(rng.New(progression.PlayerSeed(*seed, p.id)), loser, injuryCfg)
		if !ok {
			fmt.Printf("  %-16s %-4s healthy\n", p.id, p.team)
			continue
		}
		fmt.Printf("  %-16s %-4s %s %s (out %d)\n", p.id, p.team, inj.BodyPart, inj.Type, inj.MatchesOut)
	}
}

func parsePlayers(s string) ([]player, error) {
	if s == "" {
		return nil, nil
	}
	var out []player
	for _, entry := range strings.Split(s, ",") {
		id, team, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			return nil, fmt.Errorf("%q: want id:team", entry)
		}
		t := sim.Team(strings.ToLower(team))
		if t != sim.TeamHome && t != sim.TeamAway {
			return nil, fmt.Errorf("%q: team must be home or away", entry)
		}
		out = append(out, player{id: playerid.Normalize(id), team: t})
	}
	return out, nil
}

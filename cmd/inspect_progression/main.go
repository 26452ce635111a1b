package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charleschow/arcade-hockey/internal/core/playerid"
	"github.com/charleschow/arcade-hockey/internal/core/progression"
)

func main() {
	dbPath := flag.String("db", "data/progression.db", "path to progression ledger")
	player := flag.String("player", "", "player id to dump")
	matchID := flag.String("match", "", "match id to dump")
	asJSON := flag.Bool("json", false, "print JSON instead of text")
	flag.Parse()

	if *player == "" && *matchID == "" {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/inspect_progression [-db path] -player <id> | -match <id> [-json]")
		os.Exit(1)
	}

	st, err := progression.OpenStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *matchID != "" {
		r, err := st.Result(*matchID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if *asJSON {
			printJSON(r)
		} else {
			fmt.Printf("match %s  preset=%s  seed=%d\n", r.MatchID, r.Preset, r.Seed)
			fmt.Printf("  final %d-%d after %d ticks, %d pops, at %s\n",
				r.HomeScore, r.AwayScore, r.Ticks, r.Pops, r.FinishedAt.Local().Format("2006-01-02 15:04:05"))
		}
	}

	if *player != "" {
		p, err := st.PlayerProfile(playerid.Normalize(*player))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if *asJSON {
			printJSON(p)
			return
		}
		status := "available"
		if p.Sidelined() {
			status = "sidelined"
		}
		fmt.Printf("player %s  xp=%.1f  matches=%d  %s\n", p.PlayerID, p.TotalXP, p.MatchesPlayed, status)
		for _, inj := range p.Injuries {
			fmt.Printf("  %-6s %-8s %-5s out=%d remaining=%d  match=%s\n",
				inj.Injury.BodyPart, inj.Injury.Type, inj.Team, inj.Injury.MatchesOut, inj.Remaining, inj.MatchID)
		}
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
	}
}

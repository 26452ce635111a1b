package sim

import "github.com/charleschow/arcade-hockey/internal/core/rng"

type MatchConfig struct {
	ClockConfig
	Stuck StuckPuckConfig `json:"stuck"`
}

// TickResult reports what happened during one tick beyond the state change.
type TickResult struct {
	Popped bool
}

// TickMatch advances one frame: bump the tick counter, advance the clock,
// then run the stuck-puck resolver. Possession is not tracked yet, so the
// resolver always sees the puck's own last region and no possession change.
func TickMatch(s *MatchState, dtMs float64, r *rng.Rng, cfg MatchConfig) TickResult {
	s.Tick++
	AdvanceClock(&s.Clock, dtMs, cfg.ClockConfig)
	popped := UpdateStuckPuck(&s.Puck, s.Puck.LastRegion, false, r, cfg.Stuck)
	return TickResult{Popped: popped}
}

// Package facade is the surface a renderer or host loop drives: start a
// match, queue inputs, tick, and read back a snapshot.
package facade

import (
	"github.com/charleschow/arcade-hockey/internal/core/command"
	"github.com/charleschow/arcade-hockey/internal/core/rng"
	"github.com/charleschow/arcade-hockey/internal/core/sim"
	"github.com/charleschow/arcade-hockey/internal/telemetry"
)

// StartConfig is everything StartMatch needs. Numeric fields are taken as
// given; callers validate at their own boundary.
type StartConfig struct {
	sim.MatchConfig
	Seed int64 `json:"seed"`
}

// Snapshot is a copy of the externally visible match state.
type Snapshot struct {
	Tick   int       `json:"tick"`
	Score  sim.Score `json:"score"`
	Period int       `json:"period"`
	Phase  sim.Phase `json:"phase"`
}

func DefaultStartConfig() StartConfig {
	return StartConfig{
		MatchConfig: sim.MatchConfig{
			ClockConfig: sim.ClockConfig{PeriodMs: 1000, OvertimeMs: 500},
			Stuck:       sim.StuckPuckConfig{EpsilonSpeed: 0.01, ThresholdTicks: 3, PopStrength: 2},
		},
		Seed: 1,
	}
}

// MatchFacade owns one match: its state, its RNG stream, and the inputs
// queued since the last tick. It is not safe for concurrent use; hosts
// that need that serialize access themselves (see state/match).
type MatchFacade struct {
	state   *sim.MatchState
	rng     *rng.Rng
	pending []command.Command
	config  sim.MatchConfig
	pops    int
}

func New() *MatchFacade {
	def := DefaultStartConfig()
	return &MatchFacade{
		state:  sim.NewMatchState(),
		rng:    rng.New(def.Seed),
		config: def.MatchConfig,
	}
}

// StartMatch discards any current match and begins a new one.
func (f *MatchFacade) StartMatch(cfg StartConfig) {
	f.config = cfg.MatchConfig
	f.state = sim.NewMatchState()
	f.rng = rng.New(cfg.Seed)
	f.pending = nil
	f.pops = 0
	telemetry.Debugf("match started  seed=%d  period_ms=%.0f  overtime_ms=%.0f", cfg.Seed, cfg.PeriodMs, cfg.OvertimeMs)
}

// SendInput queues cmd for the next tick.
func (f *MatchFacade) SendInput(cmd command.Command) {
	f.pending = append(f.pending, cmd)
}

func (f *MatchFacade) PendingInputCount() int { return len(f.pending) }

// Tick advances the match by dtMs. Queued inputs are cleared afterwards
// without being applied; nothing in the simulation consumes them yet.
func (f *MatchFacade) Tick(dtMs float64) sim.TickResult {
	res := sim.TickMatch(f.state, dtMs, f.rng, f.config)
	if res.Popped {
		f.pops++
	}
	f.pending = f.pending[:0]
	return res
}

func (f *MatchFacade) Snapshot() Snapshot {
	return Snapshot{
		Tick:   f.state.Tick,
		Score:  f.state.Score,
		Period: f.state.Clock.Period,
		Phase:  f.state.Clock.Phase,
	}
}

// Clock and Puck return copies for renderers that need more than the
// snapshot.
func (f *MatchFacade) Clock() sim.ClockState { return f.state.Clock }
func (f *MatchFacade) Puck() sim.PuckState   { return f.state.Puck }

// Pops counts stuck-puck pops since StartMatch.
func (f *MatchFacade) Pops() int { return f.pops }

func (f *MatchFacade) Config() sim.MatchConfig { return f.config }

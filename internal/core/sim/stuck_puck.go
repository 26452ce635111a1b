package sim

import (
	"math"

	"github.com/charleschow/arcade-hockey/internal/core/rng"
	"github.com/charleschow/arcade-hockey/internal/core/vec"
)

// Region is the coarse rink zone used for stuck detection.
type Region string

const (
	RegionLeft   Region = "left"
	RegionCenter Region = "center"
	RegionRight  Region = "right"
)

type Team string

const (
	TeamNone Team = ""
	TeamHome Team = "home"
	TeamAway Team = "away"
)

// Opponent returns the other side, or TeamNone for TeamNone.
func (t Team) Opponent() Team {
	switch t {
	case TeamHome:
		return TeamAway
	case TeamAway:
		return TeamHome
	}
	return TeamNone
}

type StuckPuckConfig struct {
	EpsilonSpeed   float64 `json:"epsilon_speed"`
	ThresholdTicks int     `json:"threshold_ticks"`
	PopStrength    float64 `json:"pop_strength"`
}

type PuckState struct {
	Pos           vec.Vec2 `json:"pos"`
	Vel           vec.Vec2 `json:"vel"`
	StuckTicks    int      `json:"stuck_ticks"`
	LastRegion    Region   `json:"last_region"`
	LastTouchTeam Team     `json:"last_touch_team,omitempty"`
}

func NewPuckState() PuckState {
	return PuckState{LastRegion: RegionCenter}
}

// UpdateStuckPuck counts consecutive slow ticks in one region and pops the
// puck in a random direction when the count reaches ThresholdTicks. A region
// change, a possession change, or any speed at or above EpsilonSpeed resets
// the count. It reports whether the puck was popped; exactly one draw is
// taken from r on a pop and none otherwise.
func UpdateStuckPuck(p *PuckState, region Region, possessionChanged bool, r *rng.Rng, cfg StuckPuckConfig) bool {
	slow := vec.Len(p.Vel) < cfg.EpsilonSpeed

	if possessionChanged || region != p.LastRegion || !slow {
		p.StuckTicks = 0
		p.LastRegion = region
		return false
	}

	p.StuckTicks++
	p.LastRegion = region

	if p.StuckTicks < cfg.ThresholdTicks {
		return false
	}

	angle := r.Next() * math.Pi * 2
	p.Vel = vec.FromAngle(angle, cfg.PopStrength)
	p.StuckTicks = 0
	return true
}

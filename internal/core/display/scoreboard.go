package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charleschow/arcade-hockey/internal/core/sim"
)

const (
	dividerHeavy = "========================================================================"
	dividerLight = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"
)

// Scoreboard is everything one printed block shows.
type Scoreboard struct {
	MatchID string
	Preset  string
	Event   string
	Tick    int
	Period  int
	Phase   sim.Phase
	ClockMs float64
	Home    int
	Away    int
	Pops    int
	Puck    sim.PuckState
}

// Format renders sb as a multi-line block. Pops get the light divider so
// they stand apart from period changes in a scrolling terminal.
func Format(sb Scoreboard) string {
	divider := dividerHeavy
	if sb.Event == "puck_pop" {
		divider = dividerLight
	}

	ts := time.Now().Format("3:04:05.000 PM")

	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s %s]\n", strings.ToUpper(sb.Event), ts)
	fmt.Fprintf(&b, "%s\n", divider)
	fmt.Fprintf(&b, "  Match %s (%s)\n", shortName(sb.MatchID), sb.Preset)
	fmt.Fprintf(&b, "    %-24sHome %d  |  Away %d\n", "Score:", sb.Home, sb.Away)
	fmt.Fprintf(&b, "    %-24s%s  |  %s elapsed\n", "Clock:", periodLabel(sb.Period, sb.Phase), clockLabel(sb.ClockMs))
	fmt.Fprintf(&b, "    %-24s%d\n", "Tick:", sb.Tick)
	fmt.Fprintf(&b, "    %-24s%d\n", "Puck pops:", sb.Pops)
	if sb.Event == "puck_pop" {
		fmt.Fprintf(&b, "    %-24s(%.2f, %.2f) -> (%.3f, %.3f)\n", "Puck:",
			sb.Puck.Pos.X, sb.Puck.Pos.Y, sb.Puck.Vel.X, sb.Puck.Vel.Y)
	}
	fmt.Fprintf(&b, "%s\n", divider)
	return b.String()
}

func periodLabel(period int, phase sim.Phase) string {
	switch phase {
	case sim.PhaseOvertime:
		return "OT"
	case sim.PhaseFinal:
		if period > sim.RegulationPeriods {
			return "Final/OT"
		}
		return "Final"
	}
	return fmt.Sprintf("P%d", period)
}

func clockLabel(ms float64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func shortName(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

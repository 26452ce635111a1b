package sim

// Phase is the coarse match stage. Final is terminal.
type Phase string

const (
	PhaseRegulation Phase = "regulation"
	PhaseOvertime   Phase = "overtime"
	PhaseFinal      Phase = "final"
)

const (
	RegulationPeriods = 3
	OvertimePeriod    = RegulationPeriods + 1
)

type ClockConfig struct {
	PeriodMs   float64 `json:"period_ms"`
	OvertimeMs float64 `json:"overtime_ms"`
}

// ClockState tracks elapsed time inside the current period (or overtime).
// Period only ever increases and ClockMs resets to the remainder on each
// period rollover.
type ClockState struct {
	Period  int     `json:"period"`
	ClockMs float64 `json:"clock_ms"`
	Phase   Phase   `json:"phase"`
}

func NewClockState() ClockState {
	return ClockState{Period: 1, Phase: PhaseRegulation}
}

// AdvanceClock moves the clock forward by dtMs. A single large step may
// roll over several periods and land directly in overtime or final.
// Once final, further calls do nothing.
func AdvanceClock(s *ClockState, dtMs float64, cfg ClockConfig) {
	if s.Phase == PhaseFinal {
		return
	}

	s.ClockMs += dtMs

	if s.Phase == PhaseRegulation {
		for s.ClockMs >= cfg.PeriodMs && s.Period <= RegulationPeriods {
			s.ClockMs -= cfg.PeriodMs
			s.Period++
		}
		if s.Period > RegulationPeriods {
			s.Phase = PhaseOvertime
			s.Period = OvertimePeriod
		}
	}

	if s.Phase == PhaseOvertime && s.ClockMs >= cfg.OvertimeMs {
		s.ClockMs = cfg.OvertimeMs
		s.Phase = PhaseFinal
	}
}

func (s ClockState) IsFinal() bool { return s.Phase == PhaseFinal }

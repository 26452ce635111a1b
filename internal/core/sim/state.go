package sim

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Winner returns the leading team, or TeamNone on a tie.
func (s Score) Winner() Team {
	switch {
	case s.Home > s.Away:
		return TeamHome
	case s.Away > s.Home:
		return TeamAway
	}
	return TeamNone
}

// MatchState is everything one match mutates per tick. It is created fresh
// at match start and never shared between matches.
type MatchState struct {
	Clock ClockState `json:"clock"`
	Puck  PuckState  `json:"puck"`
	Score Score      `json:"score"`
	Tick  int        `json:"tick"`
}

func NewMatchState() *MatchState {
	return &MatchState{
		Clock: NewClockState(),
		Puck:  NewPuckState(),
	}
}

package events

// SnapshotEvent is published every few frames so spectators can redraw.
type SnapshotEvent struct {
	Tick      int     `json:"tick"`
	HomeScore int     `json:"home_score"`
	AwayScore int     `json:"away_score"`
	Period    int     `json:"period"`
	Phase     string  `json:"phase"`
	ClockMs   float64 `json:"clock_ms"`
	PuckX     float64 `json:"puck_x"`
	PuckY     float64 `json:"puck_y"`
	PuckVX    float64 `json:"puck_vx"`
	PuckVY    float64 `json:"puck_vy"`
}

// PeriodEvent covers period_start, overtime and final transitions.
type PeriodEvent struct {
	Period int    `json:"period"`
	Phase  string `json:"phase"`
}

// PuckPopEvent is published when the stuck-puck resolver fires.
type PuckPopEvent struct {
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Total int     `json:"total"`
}

// FinalEvent carries the final score once a match ends.
type FinalEvent struct {
	HomeScore int   `json:"home_score"`
	AwayScore int   `json:"away_score"`
	Ticks     int   `json:"ticks"`
	Seed      int64 `json:"seed"`
	Pops      int   `json:"pops"`
}

// InjuryEvent is published for every injury rolled at match end.
type InjuryEvent struct {
	PlayerID   string `json:"player_id"`
	Team       string `json:"team"`
	BodyPart   string `json:"body_part"`
	Type       string `json:"type"`
	MatchesOut int    `json:"matches_out"`
}

// XPEvent is published for every experience award.
type XPEvent struct {
	PlayerID string  `json:"player_id"`
	Action   string  `json:"action"`
	Count    int     `json:"count"`
	XP       float64 `json:"xp"`
}

package sim

import "github.com/charleschow/arcade-hockey/internal/core/rng"

type BodyPart string

const (
	BodyHead  BodyPart = "head"
	BodyTorso BodyPart = "torso"
	BodyArm   BodyPart = "arm"
	BodyLeg   BodyPart = "leg"
)

type InjuryType string

const (
	InjuryCut      InjuryType = "cut"
	InjurySprain   InjuryType = "sprain"
	InjuryFracture InjuryType = "fracture"
)

// Injury is the result of a single roll. MatchesOut is fixed by Type.
type Injury struct {
	BodyPart   BodyPart   `json:"body_part"`
	Type       InjuryType `json:"type"`
	MatchesOut int        `json:"matches_out"`
}

type InjuryConfig struct {
	LoserChance  float64 `json:"loser_chance"`
	WinnerChance float64 `json:"winner_chance"`
}

func DefaultInjuryConfig() InjuryConfig {
	return InjuryConfig{LoserChance: 0.35, WinnerChance: 0.15}
}

var (
	bodyParts   = [...]BodyPart{BodyHead, BodyTorso, BodyArm, BodyLeg}
	injuryTypes = [...]InjuryType{InjuryCut, InjurySprain, InjuryFracture}
)

// MatchesOut returns how many matches an injury of type t sidelines a player.
func (t InjuryType) MatchesOut() int {
	switch t {
	case InjuryCut:
		return 1
	case InjurySprain:
		return 2
	case InjuryFracture:
		return 6
	}
	return 0
}

// RollInjury draws once against the applicable chance and, on a hit, twice
// more to pick body part and type. Callers sharing r across rolls should
// note the stream advances by 3 on an injury and by 1 otherwise.
func RollInjury(r *rng.Rng, loser bool, cfg InjuryConfig) (Injury, bool) {
	chance := cfg.WinnerChance
	if loser {
		chance = cfg.LoserChance
	}

	if r.Next() > chance {
		return Injury{}, false
	}

	part := bodyParts[int(r.Next()*float64(len(bodyParts)))]
	typ := injuryTypes[int(r.Next()*float64(len(injuryTypes)))]
	return Injury{BodyPart: part, Type: typ, MatchesOut: typ.MatchesOut()}, true
}

// Package gear turns raw equipment bonuses into effective ones.
package gear

import "math"

const (
	DefaultSoftCap      = 0.3
	DefaultExcessFactor = 0.5
	DefaultSkillK       = 50.0
	DefaultMinScale     = 0.4
)

// ApplySoftCap passes bonus through unchanged up to softCap and keeps only
// excessFactor of anything above it.
func ApplySoftCap(bonus, softCap, excessFactor float64) float64 {
	if bonus <= softCap {
		return bonus
	}
	return softCap + (bonus-softCap)*excessFactor
}

// SkillCurve maps a skill rating onto [0, 1) with diminishing growth.
func SkillCurve(skill, k float64) float64 {
	return 1 - math.Exp(-skill/k)
}

// ApplySkillCurve scales a gear bonus by the wearer's skill. An unskilled
// player still gets minScale of the bonus.
func ApplySkillCurve(gearBonus, skill, minScale float64) float64 {
	return gearBonus * (minScale + (1-minScale)*SkillCurve(skill, DefaultSkillK))
}

// Effective applies the soft cap and then the skill curve with default
// tuning.
func Effective(gearBonus, skill float64) float64 {
	capped := ApplySoftCap(gearBonus, DefaultSoftCap, DefaultExcessFactor)
	return ApplySkillCurve(capped, skill, DefaultMinScale)
}

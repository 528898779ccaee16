package service

import (
	"math"

	"kingdom-hub/internal/model"
)

// XPPerLevelStep is the XP size of the level-1 bucket; level n needs n times this.
const XPPerLevelStep = 100

// LevelUpBonusPerLevel is multiplied by the new level to size the level-up bonus.
const LevelUpBonusPerLevel = 50

// LevelFor maps total XP to a level, starting at 1.
// Passing level n consumes n*100 XP, so level 2 needs 100 XP, level 3 needs 300.
// XP above model.MaxAmount is treated as model.MaxAmount.
func LevelFor(xp int64) int {
	if xp < XPPerLevelStep {
		return 1
	}
	xp = min(xp, model.MaxAmount)
	// LevelStartXP(n) = 50n(n-1), so n is the floor of the positive root.
	level := int((1 + math.Sqrt(1+8*float64(xp)/XPPerLevelStep)) / 2)
	for level > 1 && LevelStartXP(level) > xp {
		level--
	}
	for LevelStartXP(level+1) <= xp {
		level++
	}
	return level
}

// XPToNext returns the XP needed to pass the given level.
func XPToNext(level int) int64 {
	return int64(level) * XPPerLevelStep
}

// LevelStartXP returns the total XP at which a level begins.
func LevelStartXP(level int) int64 {
	n := int64(level)
	return XPPerLevelStep * (n - 1) * n / 2
}

// ProgressFraction returns how much of the current level's bucket is filled,
// as a percentage clamped to [0, 100].
func ProgressFraction(xp int64, level int) float64 {
	into := float64(xp-LevelStartXP(level)) / float64(XPToNext(level)) * 100
	return math.Max(0, math.Min(100, into))
}

// XPGain describes the effect of one XP grant.
type XPGain struct {
	Gained    int64
	FromLevel int
	ToLevel   int
}

// LeveledUp reports whether at least one level boundary was crossed.
func (g XPGain) LeveledUp() bool {
	return g.ToLevel > g.FromLevel
}

// LevelsGained lists every level reached by the grant, in order.
func (g XPGain) LevelsGained() []int {
	var out []int
	for l := g.FromLevel + 1; l <= g.ToLevel; l++ {
		out = append(out, l)
	}
	return out
}

// ScaleXP returns floor(raw * multiplier), or 0 for a non-positive raw gain.
func ScaleXP(raw int64, multiplier float64) int64 {
	if raw <= 0 {
		return 0
	}
	return floorSaturated(float64(raw) * multiplier)
}

// ApplyXPGain adds floor(raw * multiplier) XP to acc and recomputes its level.
func ApplyXPGain(acc *model.Account, raw int64, multiplier float64) XPGain {
	gain := XPGain{FromLevel: acc.Level, Gained: ScaleXP(raw, multiplier)}
	acc.XP += gain.Gained
	acc.Level = LevelFor(acc.XP)
	gain.ToLevel = acc.Level
	return gain
}

// scalePoints applies a product of multipliers to a positive base and floors the result.
// Debits are returned unchanged.
func scalePoints(base int64, multipliers ...float64) int64 {
	if base <= 0 {
		return base
	}
	v := float64(base)
	for _, m := range multipliers {
		v *= m
	}
	return floorSaturated(v)
}

// floorSaturated floors v and clamps it to math.MaxInt64 instead of wrapping.
func floorSaturated(v float64) int64 {
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(v))
}

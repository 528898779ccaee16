package model

import (
	"errors"
	"fmt"
)

// ErrInvalidEconomyConfig is returned when a config value is out of range.
var ErrInvalidEconomyConfig = errors.New("invalid economy config")

// EconomyConfig holds tunable economy parameters.
// Win rates are percentages in [0, 100]; multipliers are at least 1.
type EconomyConfig struct {
	SpinWinRate            float64 `json:"spinWinRate" mapstructure:"spin_win_rate"`
	CoinFlipWinRate        float64 `json:"coinFlipWinRate" mapstructure:"coin_flip_win_rate"`
	LuckyDrawCooldownHours float64 `json:"luckyDrawCooldownHours" mapstructure:"lucky_draw_cooldown_hours"`
	SpinCooldownHours      float64 `json:"spinCooldownHours" mapstructure:"spin_cooldown_hours"`
	GlobalPointMultiplier  float64 `json:"globalPointMultiplier" mapstructure:"global_point_multiplier"`
	MinerRatePerClick      int64   `json:"minerRatePerClick" mapstructure:"miner_rate_per_click"`
	XPMultiplier           float64 `json:"xpMultiplier" mapstructure:"xp_multiplier"`
}

// DefaultEconomyConfig returns the built-in economy defaults.
func DefaultEconomyConfig() EconomyConfig {
	return EconomyConfig{
		SpinWinRate:            40,
		CoinFlipWinRate:        50,
		LuckyDrawCooldownHours: 12,
		SpinCooldownHours:      24,
		GlobalPointMultiplier:  1,
		MinerRatePerClick:      1,
		XPMultiplier:           1,
	}
}

// PartialEconomyConfig is the persisted form of EconomyConfig.
// Any field may be absent.
type PartialEconomyConfig struct {
	SpinWinRate            *float64 `json:"spinWinRate,omitempty"`
	CoinFlipWinRate        *float64 `json:"coinFlipWinRate,omitempty"`
	LuckyDrawCooldownHours *float64 `json:"luckyDrawCooldownHours,omitempty"`
	SpinCooldownHours      *float64 `json:"spinCooldownHours,omitempty"`
	GlobalPointMultiplier  *float64 `json:"globalPointMultiplier,omitempty"`
	MinerRatePerClick      *int64   `json:"minerRatePerClick,omitempty"`
	XPMultiplier           *float64 `json:"xpMultiplier,omitempty"`
}

// Validate checks every field against its allowed range.
func (c EconomyConfig) Validate() error {
	switch {
	case c.SpinWinRate < 0 || c.SpinWinRate > 100:
		return fmt.Errorf("%w: spin win rate %v not in [0,100]", ErrInvalidEconomyConfig, c.SpinWinRate)
	case c.CoinFlipWinRate < 0 || c.CoinFlipWinRate > 100:
		return fmt.Errorf("%w: coin flip win rate %v not in [0,100]", ErrInvalidEconomyConfig, c.CoinFlipWinRate)
	case c.LuckyDrawCooldownHours < 0:
		return fmt.Errorf("%w: lucky draw cooldown must not be negative", ErrInvalidEconomyConfig)
	case c.SpinCooldownHours < 0:
		return fmt.Errorf("%w: spin cooldown must not be negative", ErrInvalidEconomyConfig)
	case c.GlobalPointMultiplier < 1:
		return fmt.Errorf("%w: global point multiplier must be >= 1", ErrInvalidEconomyConfig)
	case c.MinerRatePerClick < 0:
		return fmt.Errorf("%w: miner rate must not be negative", ErrInvalidEconomyConfig)
	case c.XPMultiplier < 1:
		return fmt.Errorf("%w: xp multiplier must be >= 1", ErrInvalidEconomyConfig)
	}
	return nil
}

// Partial converts c into its fully populated persisted form.
func (c EconomyConfig) Partial() PartialEconomyConfig {
	return PartialEconomyConfig{
		SpinWinRate:            &c.SpinWinRate,
		CoinFlipWinRate:        &c.CoinFlipWinRate,
		LuckyDrawCooldownHours: &c.LuckyDrawCooldownHours,
		SpinCooldownHours:      &c.SpinCooldownHours,
		GlobalPointMultiplier:  &c.GlobalPointMultiplier,
		MinerRatePerClick:      &c.MinerRatePerClick,
		XPMultiplier:           &c.XPMultiplier,
	}
}

// MergeEconomyConfig overlays the stored fields onto defaults.
// A stored field that is absent or out of range falls back to its default,
// so a partial or damaged record never yields an undefined value.
// This is the only place defaults are merged.
func MergeEconomyConfig(defaults EconomyConfig, stored PartialEconomyConfig) EconomyConfig {
	out := defaults
	if v := stored.SpinWinRate; v != nil && *v >= 0 && *v <= 100 {
		out.SpinWinRate = *v
	}
	if v := stored.CoinFlipWinRate; v != nil && *v >= 0 && *v <= 100 {
		out.CoinFlipWinRate = *v
	}
	if v := stored.LuckyDrawCooldownHours; v != nil && *v >= 0 {
		out.LuckyDrawCooldownHours = *v
	}
	if v := stored.SpinCooldownHours; v != nil && *v >= 0 {
		out.SpinCooldownHours = *v
	}
	if v := stored.GlobalPointMultiplier; v != nil && *v >= 1 {
		out.GlobalPointMultiplier = *v
	}
	if v := stored.MinerRatePerClick; v != nil && *v >= 0 {
		out.MinerRatePerClick = *v
	}
	if v := stored.XPMultiplier; v != nil && *v >= 1 {
		out.XPMultiplier = *v
	}
	return out
}

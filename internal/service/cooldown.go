package service

import (
	"context"
	"fmt"
	"time"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

// CoinFlipCooldown is fixed; spin and lucky draw cooldowns come from the economy config.
const CoinFlipCooldown = 6 * time.Hour

// Eligibility is the answer of CooldownGate.CanAct.
type Eligibility struct {
	Allowed   bool
	Remaining time.Duration
}

// CooldownGate decides whether an account may run an action kind now.
type CooldownGate struct {
	store  *store.Store
	config *ConfigStore
}

// NewCooldownGate creates a CooldownGate.
func NewCooldownGate(st *store.Store, config *ConfigStore) *CooldownGate {
	return &CooldownGate{store: st, config: config}
}

// Duration returns the cooldown of a kind under the current config.
// Daily login is gated by calendar date instead and returns 0.
func (g *CooldownGate) Duration(kind model.ActionKind) time.Duration {
	cfg := g.config.Get()
	switch kind {
	case model.ActionSpin:
		return hours(cfg.SpinCooldownHours)
	case model.ActionLuckyDraw:
		return hours(cfg.LuckyDrawCooldownHours)
	case model.ActionCoinFlip:
		return CoinFlipCooldown
	}
	return 0
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// CanAct reports whether the account may run kind at now. It has no side effects.
func (g *CooldownGate) CanAct(accountID int64, kind model.ActionKind, now time.Time) (Eligibility, error) {
	if kind == model.ActionDailyLogin {
		acc, err := g.store.Account(accountID)
		if err != nil {
			return Eligibility{}, mapStoreErr(err)
		}
		if acc.LastLoginDate != nil && *acc.LastLoginDate == model.DateOf(now) {
			return Eligibility{Remaining: untilNextDay(now)}, nil
		}
		return Eligibility{Allowed: true}, nil
	}

	last, ok := g.store.LastAction(accountID, kind)
	if !ok {
		return Eligibility{Allowed: true}, nil
	}
	opens := last.Add(g.Duration(kind))
	if !now.Before(opens) {
		return Eligibility{Allowed: true}, nil
	}
	return Eligibility{Remaining: opens.Sub(now)}, nil
}

// Check is CanAct returning a *CooldownError when the gate is closed.
func (g *CooldownGate) Check(accountID int64, kind model.ActionKind, now time.Time) error {
	e, err := g.CanAct(accountID, kind, now)
	if err != nil {
		return err
	}
	if !e.Allowed {
		return &CooldownError{Kind: kind, Remaining: e.Remaining}
	}
	return nil
}

// RecordAction stores now as the last execution of kind.
// Call it only after the action's reward has been committed.
func (g *CooldownGate) RecordAction(ctx context.Context, accountID int64, kind model.ActionKind, now time.Time) error {
	err := g.store.SetLastAction(ctx, model.CooldownRecord{AccountID: accountID, Kind: kind, LastExecution: now})
	if err != nil {
		return fmt.Errorf("failed to record %s cooldown: %w", kind, err)
	}
	return nil
}

func untilNextDay(now time.Time) time.Duration {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()).Sub(now)
}

// NextStreak computes the login streak for a grant on today's date.
// The streak continues only when the previous grant was exactly yesterday.
func NextStreak(lastLogin *string, streak int, now time.Time) int {
	if lastLogin != nil && *lastLogin == model.DateOf(now.AddDate(0, 0, -1)) {
		return streak + 1
	}
	return 1
}

// DailyReward returns the daily login points for a streak: 10 per day, capped at 100.
func DailyReward(streak int) int64 {
	return int64(min(100, streak*10))
}

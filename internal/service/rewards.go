package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/game/miner"
	"kingdom-hub/internal/metrics"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/pkg/schedule"
	"kingdom-hub/internal/shop"
	"kingdom-hub/internal/store"
)

// PlayResult is what a reward action returns to its caller for display.
type PlayResult struct {
	Kind        model.ActionKind
	Outcome     game.Outcome
	Points      int64 // signed points actually applied
	Account     *model.Account
	Transaction *model.Transaction
	LevelsUp    []int
	Energy      int
}

// LeveledUp reports whether the play crossed a level boundary.
func (r *PlayResult) LeveledUp() bool { return len(r.LevelsUp) > 0 }

// RewardDeps bundles the collaborators of RewardService.
type RewardDeps struct {
	Ledger   *Ledger
	TxLog    *TransactionLog
	Gate     *CooldownGate
	Config   *ConfigStore
	Store    *store.Store
	Catalog  *shop.Catalog
	Registry *game.Registry
	Energy   *miner.EnergyMeter
	Rand     game.Rand
	Delays   map[model.ActionKind]time.Duration
	Now      func() time.Time
}

// RewardService runs the reward actions: cooldown check, a fixed resolution
// delay, then compute, commit, cooldown record, audit record and engagement log.
type RewardService struct {
	RewardDeps
}

// NewRewardService creates a RewardService.
func NewRewardService(deps RewardDeps) *RewardService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &RewardService{RewardDeps: deps}
}

// Play runs one reward action for the account.
//
// The resolution is scheduled after the kind's delay. If ctx ends before the
// resolution starts the action is abandoned with nothing committed; once it
// has started it always runs to completion.
func (s *RewardService) Play(ctx context.Context, accountID int64, kind model.ActionKind, req game.Request) (*PlayResult, error) {
	g, ok := s.Registry.Get(kind)
	if !ok {
		return nil, ErrUnknownGame
	}
	if err := g.ValidateBet(req); err != nil {
		return nil, err
	}

	acc, err := s.Ledger.Get(accountID)
	if err != nil {
		return nil, err
	}
	if acc.Blocked {
		return nil, ErrAccountBlocked
	}
	if req.Bet > acc.Points {
		return nil, ErrInsufficientBalance
	}
	if err := s.Gate.Check(accountID, kind, s.Now()); err != nil {
		metrics.ActionsTotal.WithLabelValues(string(kind), metrics.ResultRejected).Inc()
		return nil, err
	}

	energy := 0
	if kind == model.ActionMiner {
		left, ok := s.Energy.Consume(accountID, s.Now())
		if !ok {
			return nil, ErrOutOfEnergy
		}
		energy = left
	}

	commitCtx := context.WithoutCancel(ctx)
	task := schedule.After(s.Delays[kind], func() (*PlayResult, error) {
		return s.resolve(commitCtx, accountID, g, req)
	})
	res, err := task.Wait(ctx)
	if err != nil {
		if kind == model.ActionMiner {
			s.Energy.Refund(accountID, s.Now())
		}
		return nil, err
	}
	res.Energy = energy
	return res, nil
}

func (s *RewardService) resolve(ctx context.Context, accountID int64, g game.Game, req game.Request) (*PlayResult, error) {
	kind := g.Kind()
	res := &PlayResult{Kind: kind}

	err := s.Ledger.WithAccount(accountID, func(sess *Session) error {
		now := s.Now()
		// A concurrent play of the same kind may have committed during the delay.
		if err := s.Gate.Check(accountID, kind, now); err != nil {
			return err
		}
		acc, err := sess.Account()
		if err != nil {
			return err
		}

		cfg := s.Config.Get()
		out := g.Resolve(s.Rand, cfg, req)
		res.Outcome = out
		res.Account = acc

		if !out.Commit {
			// Nothing is credited but the attempt still uses up the cooldown.
			return s.Gate.RecordAction(ctx, accountID, kind, now)
		}

		mods := ModifiersOf(acc, s.Catalog, now)
		points := out.Points
		if kind == model.ActionMiner {
			points += mods.MiningBonus
		}
		points = scalePoints(points, cfg.GlobalPointMultiplier, mods.PointMultiplier)
		res.Points = points

		delta := model.Delta{Points: points, XP: out.XP}
		if out.CountsAsSpin {
			delta.Spins = 1
		}
		if out.CountsAsSpin || out.CountsWinnings {
			delta.Winnings = max(points, 0)
		}
		commit, err := sess.ApplyDelta(ctx, delta)
		if err != nil {
			return err
		}
		res.Account = commit.Account

		if out.BonusEntries > 0 {
			acc, err := sess.ApplyFull(ctx, func(a *model.Account) error {
				a.BonusEntries += out.BonusEntries
				return nil
			})
			if err != nil {
				return err
			}
			res.Account = acc
		}

		if kind != model.ActionMiner {
			if err := s.Gate.RecordAction(ctx, accountID, kind, now); err != nil {
				return err
			}
		}

		if txKind, desc, ok := describe(kind, out, req, points); ok {
			tx, err := s.TxLog.RecordFor(ctx, res.Account, txKind, points, desc)
			if err != nil {
				return err
			}
			res.Transaction = &tx
		}

		res.LevelsUp = commit.XP.LevelsGained()
		acc, err = sess.IssueLevelBonuses(ctx, commit)
		res.Account = acc
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logInteraction(ctx, res)
	return res, nil
}

// describe picks the transaction for an outcome. A bonus entry prize is
// recorded with amount 0.
func describe(kind model.ActionKind, out game.Outcome, req game.Request, points int64) (model.TxKind, string, bool) {
	if points == 0 && out.BonusEntries == 0 {
		return "", "", false
	}
	switch kind {
	case model.ActionSpin:
		return model.TxGameWin, fmt.Sprintf("Won %s on Spin Wheel", out.Label), true
	case model.ActionCoinFlip:
		if out.Win {
			return model.TxGameWin, fmt.Sprintf("Won Coin Flip (%d pts bet)", req.Bet), true
		}
		return model.TxGameLoss, fmt.Sprintf("Lost Coin Flip (%d pts bet)", req.Bet), true
	case model.ActionLuckyDraw:
		return model.TxGameWin, fmt.Sprintf("Won %s in Lucky Draw", out.Label), true
	case model.ActionMiner:
		return model.TxMinerClaim, "Mined resources in Kingdom Miner", true
	}
	return "", "", false
}

func (s *RewardService) logInteraction(ctx context.Context, res *PlayResult) {
	result := metrics.ResultNothing
	switch {
	case res.Points < 0:
		result = metrics.ResultLoss
	case res.Outcome.Commit:
		result = metrics.ResultWin
	}
	metrics.ActionsTotal.WithLabelValues(string(res.Kind), result).Inc()

	label := res.Outcome.Label
	err := s.Store.AppendInteraction(ctx, model.Interaction{
		AccountID: res.Account.ID,
		Username:  res.Account.Username,
		Kind:      string(res.Kind),
		Reward:    &label,
	})
	if err != nil {
		// The engagement log is not audit-critical.
		log.Warn().Err(err).Int64("account_id", res.Account.ID).Msg("Failed to log interaction")
	}
}

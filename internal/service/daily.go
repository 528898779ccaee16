package service

import (
	"context"
	"fmt"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/metrics"
	"kingdom-hub/internal/model"
)

// DailyResult is the outcome of a daily login claim.
type DailyResult struct {
	Streak      int
	Reward      int64
	Account     *model.Account
	Transaction model.Transaction
}

// ClaimDaily grants the daily login reward once per calendar date.
// A second claim on the same date fails with a *CooldownError that also
// matches ErrAlreadyClaimed.
func (s *RewardService) ClaimDaily(ctx context.Context, accountID int64) (*DailyResult, error) {
	res := &DailyResult{}
	err := s.Ledger.WithAccount(accountID, func(sess *Session) error {
		now := s.Now()
		if err := s.Gate.Check(accountID, model.ActionDailyLogin, now); err != nil {
			metrics.ActionsTotal.WithLabelValues(string(model.ActionDailyLogin), metrics.ResultRejected).Inc()
			return err
		}
		acc, err := sess.Account()
		if err != nil {
			return err
		}
		if acc.Blocked {
			return ErrAccountBlocked
		}

		prevStreak, prevDate := acc.LoginStreak, acc.LastLoginDate
		streak := NextStreak(acc.LastLoginDate, acc.LoginStreak, now)
		reward := DailyReward(streak)
		today := model.DateOf(now)

		if _, err := sess.ApplyFull(ctx, func(a *model.Account) error {
			a.LoginStreak = streak
			a.LastLoginDate = &today
			return nil
		}); err != nil {
			return err
		}

		c, err := sess.ApplyDelta(ctx, model.Delta{Points: reward})
		if err != nil {
			// Put the gate back so the claim can be retried.
			if _, revertErr := sess.ApplyFull(ctx, func(a *model.Account) error {
				a.LoginStreak = prevStreak
				a.LastLoginDate = prevDate
				return nil
			}); revertErr != nil {
				return fmt.Errorf("failed to revert daily streak: %w", revertErr)
			}
			return err
		}

		tx, err := s.TxLog.RecordFor(ctx, c.Account, model.TxDailyLogin, reward, fmt.Sprintf("Daily Login Streak: Day %d", streak))
		if err != nil {
			return err
		}

		res.Streak, res.Reward, res.Account, res.Transaction = streak, reward, c.Account, tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logInteraction(ctx, &PlayResult{
		Kind:    model.ActionDailyLogin,
		Outcome: game.Outcome{Win: true, Commit: true, Label: fmt.Sprintf("%d pts", res.Reward)},
		Points:  res.Reward,
		Account: res.Account,
	})
	return res, nil
}

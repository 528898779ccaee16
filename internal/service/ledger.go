package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/metrics"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/pkg/lock"
	"kingdom-hub/internal/store"
)

// Commit is the result of a successful ledger write.
type Commit struct {
	Account *model.Account
	XP      XPGain
}

// Ledger owns account mutation. It is the only component that writes accounts,
// and every write for one account is serialized with its AccountLock.
type Ledger struct {
	store  *store.Store
	locks  *lock.AccountLock
	config *ConfigStore
	txlog  *TransactionLog
}

// NewLedger creates a Ledger.
func NewLedger(st *store.Store, locks *lock.AccountLock, config *ConfigStore, txlog *TransactionLog) *Ledger {
	return &Ledger{store: st, locks: locks, config: config, txlog: txlog}
}

// Get returns a snapshot of one account.
func (l *Ledger) Get(id int64) (*model.Account, error) {
	acc, err := l.store.Account(id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return acc, nil
}

// List returns snapshots of every account in insertion order.
func (l *Ledger) List() []*model.Account {
	return l.store.Accounts()
}

// ApplyDelta adds d to the account in one serialized step.
// It fails with ErrInsufficientBalance when points would go negative.
func (l *Ledger) ApplyDelta(ctx context.Context, id int64, d model.Delta) (*Commit, error) {
	var c *Commit
	err := l.WithAccount(id, func(s *Session) error {
		var err error
		c, err = s.ApplyDelta(ctx, d)
		return err
	})
	return c, err
}

// ApplyFull applies an arbitrary field change in one serialized step and
// rejects the result with ErrInvariantViolation if it breaks an account invariant.
func (l *Ledger) ApplyFull(ctx context.Context, id int64, mutate func(*model.Account) error) (*model.Account, error) {
	var acc *model.Account
	err := l.WithAccount(id, func(s *Session) error {
		var err error
		acc, err = s.ApplyFull(ctx, mutate)
		return err
	})
	return acc, err
}

// WithAccount runs fn while holding the account's lock, so several reads and
// writes made through the Session form one step relative to other commits.
func (l *Ledger) WithAccount(id int64, fn func(*Session) error) error {
	return l.locks.WithLock(id, func() error {
		return fn(&Session{ledger: l, id: id})
	})
}

// Create inserts a new account after checking its invariants.
func (l *Ledger) Create(ctx context.Context, acc *model.Account) (*model.Account, error) {
	if err := checkInvariants(acc, acc); err != nil {
		return nil, err
	}
	err := l.locks.WithLock(acc.ID, func() error {
		return l.store.InsertAccount(ctx, acc)
	})
	if err != nil {
		if errors.Is(err, store.ErrAccountExists) {
			return nil, fmt.Errorf("%w: account %d already exists", ErrInvariantViolation, acc.ID)
		}
		return nil, mapStoreErr(err)
	}
	log.Debug().Int64("account_id", acc.ID).Int64("points_delta", acc.Points).Int64("xp_delta", acc.XP).Msg("Account created")
	return acc.Clone(), nil
}

// Delete removes an account permanently.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	return mapStoreErr(l.locks.WithLock(id, func() error {
		return l.store.DeleteAccount(ctx, id)
	}))
}

// CreditAll adds a non-negative points amount to every listed account with a
// single durable write. Locks are taken in id order.
func (l *Ledger) CreditAll(ctx context.Context, ids []int64, points int64) ([]*model.Account, error) {
	if points < 0 {
		return nil, fmt.Errorf("%w: bulk debit of %d", ErrInvariantViolation, points)
	}
	var updated []*model.Account
	err := l.locks.WithLocks(ids, func() error {
		var err error
		updated, err = l.store.UpdateAccounts(ctx, ids, func(a *model.Account) error {
			before := *a
			if exceedsMax(a.Points, points) {
				return fmt.Errorf("%w: account %d points would exceed %d", ErrInvariantViolation, a.ID, model.MaxAmount)
			}
			a.Points += points
			return checkInvariants(&before, a)
		})
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			log.Error().Err(err).Int("accounts", len(ids)).Msg("Rejected bulk credit")
		}
		return nil, mapStoreErr(err)
	}
	metrics.ObservePoints(points * int64(len(updated)))
	log.Debug().Int("accounts", len(updated)).Int64("points_delta", points).Msg("Bulk credit committed")
	return updated, nil
}

// Session is a ledger view of one locked account. It is valid only inside WithAccount.
type Session struct {
	ledger *Ledger
	id     int64
}

// Account returns the current snapshot.
func (s *Session) Account() (*model.Account, error) {
	return s.ledger.Get(s.id)
}

// ApplyDelta is Ledger.ApplyDelta under the held lock.
func (s *Session) ApplyDelta(ctx context.Context, d model.Delta) (*Commit, error) {
	l := s.ledger
	if d.XP < 0 || d.Spins < 0 || d.Winnings < 0 {
		err := fmt.Errorf("%w: negative counter delta %+v", ErrInvariantViolation, d)
		log.Error().Err(err).Int64("account_id", s.id).Msg("Rejected ledger delta")
		return nil, err
	}

	multiplier := l.config.Get().XPMultiplier
	var gain XPGain
	acc, err := l.store.UpdateAccount(ctx, s.id, func(a *model.Account) error {
		if a.Points+d.Points < 0 {
			return ErrInsufficientBalance
		}
		if d.XP > model.MaxAmount ||
			exceedsMax(a.Points, d.Points) ||
			exceedsMax(a.XP, ScaleXP(d.XP, multiplier)) ||
			exceedsMax(a.TotalSpins, d.Spins) ||
			exceedsMax(a.TotalWinnings, d.Winnings) {
			return fmt.Errorf("%w: delta %+v would exceed %d", ErrInvariantViolation, d, model.MaxAmount)
		}
		before := *a
		a.Points += d.Points
		a.TotalSpins += d.Spins
		a.TotalWinnings += d.Winnings
		gain = ApplyXPGain(a, d.XP, multiplier)
		return checkInvariants(&before, a)
	})
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			log.Error().Err(err).Int64("account_id", s.id).Msg("Rejected ledger delta")
		}
		return nil, mapStoreErr(err)
	}

	metrics.ObservePoints(d.Points)
	if gain.LeveledUp() {
		metrics.LevelUpsTotal.Add(float64(gain.ToLevel - gain.FromLevel))
	}
	log.Debug().
		Int64("account_id", s.id).
		Int64("points_delta", d.Points).
		Int64("xp_delta", gain.Gained).
		Int64("points", acc.Points).
		Msg("Ledger delta committed")

	return &Commit{Account: acc, XP: gain}, nil
}

// ApplyFull is Ledger.ApplyFull under the held lock.
func (s *Session) ApplyFull(ctx context.Context, mutate func(*model.Account) error) (*model.Account, error) {
	var before model.Account
	acc, err := s.ledger.store.UpdateAccount(ctx, s.id, func(a *model.Account) error {
		before = *a
		if err := mutate(a); err != nil {
			return err
		}
		return checkInvariants(&before, a)
	})
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			log.Error().Err(err).Int64("account_id", s.id).Msg("Rejected account update")
		}
		return nil, mapStoreErr(err)
	}

	metrics.ObservePoints(acc.Points - before.Points)
	log.Debug().
		Int64("account_id", s.id).
		Int64("points_delta", acc.Points-before.Points).
		Int64("xp_delta", acc.XP-before.XP).
		Msg("Ledger update committed")
	return acc, nil
}

// IssueLevelBonuses credits newLevel*50 points for every level crossed in c,
// each as its own ledger commit and MANUAL_ADJUSTMENT transaction.
// The bonus is an unconditional credit.
func (s *Session) IssueLevelBonuses(ctx context.Context, c *Commit) (*model.Account, error) {
	acc := c.Account
	for _, level := range c.XP.LevelsGained() {
		bonus := int64(level) * LevelUpBonusPerLevel
		bc, err := s.ApplyDelta(ctx, model.Delta{Points: bonus})
		if err != nil {
			return acc, fmt.Errorf("failed to credit level %d bonus: %w", level, err)
		}
		acc = bc.Account
		if _, err := s.ledger.txlog.RecordFor(ctx, acc, model.TxManualAdjustment, bonus, fmt.Sprintf("Level Up Bonus (Lvl %d)", level)); err != nil {
			return acc, err
		}
		log.Info().Int64("account_id", acc.ID).Int("level", level).Int64("bonus", bonus).Msg("Level up")
	}
	return acc, nil
}

func checkInvariants(before, after *model.Account) error {
	switch {
	case after.ID != before.ID:
		return fmt.Errorf("%w: account id changed", ErrInvariantViolation)
	case after.Username == "":
		return fmt.Errorf("%w: empty username", ErrInvariantViolation)
	case after.Points < 0:
		return fmt.Errorf("%w: negative points %d", ErrInvariantViolation, after.Points)
	case after.XP < 0:
		return fmt.Errorf("%w: negative xp %d", ErrInvariantViolation, after.XP)
	case after.Points > model.MaxAmount || after.XP > model.MaxAmount ||
		after.TotalSpins > model.MaxAmount || after.TotalWinnings > model.MaxAmount:
		return fmt.Errorf("%w: value above %d", ErrInvariantViolation, model.MaxAmount)
	case after.Level != LevelFor(after.XP):
		return fmt.Errorf("%w: level %d does not match xp %d", ErrInvariantViolation, after.Level, after.XP)
	case after.LoginStreak < 0 || after.BonusEntries < 0:
		return fmt.Errorf("%w: negative counter", ErrInvariantViolation)
	case after.TotalSpins < before.TotalSpins || after.TotalWinnings < before.TotalWinnings:
		return fmt.Errorf("%w: lifetime counters decreased", ErrInvariantViolation)
	}
	for _, item := range after.Inventory {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: inventory item %s has quantity %d", ErrInvariantViolation, item.ItemID, item.Quantity)
		}
	}
	return nil
}

// exceedsMax reports whether current+delta would pass model.MaxAmount.
func exceedsMax(current, delta int64) bool {
	return delta > model.MaxAmount-current
}

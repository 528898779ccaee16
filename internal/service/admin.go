package service

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

// AccountFields lists admin-editable fields. Nil fields are left unchanged.
// An empty Wallet clears the wallet.
type AccountFields struct {
	Username    *string
	Points      *int64
	XP          *int64
	LoginStreak *int
	Blocked     *bool
	Wallet      *string
}

// AdminService is the privileged path over the ledger. It bypasses cooldowns
// and shop rules but never the ledger's invariant checks.
type AdminService struct {
	ledger  *Ledger
	txlog   *TransactionLog
	config  *ConfigStore
	store   *store.Store
	adminID int64
}

// NewAdminService creates an AdminService. adminID is the privileged account
// excluded from airdrops and protected from deletion.
func NewAdminService(ledger *Ledger, txlog *TransactionLog, config *ConfigStore, st *store.Store, adminID int64) *AdminService {
	return &AdminService{ledger: ledger, txlog: txlog, config: config, store: st, adminID: adminID}
}

// SetAccountFields edits an account directly. A points change is recorded as
// a MANUAL_ADJUSTMENT transaction carrying the signed difference.
func (s *AdminService) SetAccountFields(ctx context.Context, accountID int64, f AccountFields) (*model.Account, error) {
	if f.Wallet != nil && *f.Wallet != "" && len(*f.Wallet) < MinWalletLength {
		return nil, ErrInvalidWallet
	}

	var before int64
	acc, err := s.ledger.ApplyFull(ctx, accountID, func(a *model.Account) error {
		before = a.Points
		if f.Username != nil {
			a.Username = *f.Username
		}
		if f.Points != nil {
			a.Points = *f.Points
		}
		if f.XP != nil {
			a.XP = *f.XP
			a.Level = LevelFor(a.XP)
		}
		if f.LoginStreak != nil {
			a.LoginStreak = *f.LoginStreak
		}
		if f.Blocked != nil {
			a.Blocked = *f.Blocked
		}
		if f.Wallet != nil {
			if *f.Wallet == "" {
				a.Wallet = nil
			} else {
				a.Wallet = model.StringPtr(*f.Wallet)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if diff := acc.Points - before; diff != 0 {
		if _, err := s.txlog.RecordFor(ctx, acc, model.TxManualAdjustment, diff, "Admin adjustment"); err != nil {
			return acc, err
		}
	}

	log.Info().Str("operation", "set_account_fields").Int64("account_id", accountID).Msg("Admin override applied")
	return acc, nil
}

// SetBlocked blocks or unblocks an account.
func (s *AdminService) SetBlocked(ctx context.Context, accountID int64, blocked bool) (*model.Account, error) {
	return s.SetAccountFields(ctx, accountID, AccountFields{Blocked: &blocked})
}

// DeleteAccount removes an account permanently. Its transactions and
// cooldown records are kept.
func (s *AdminService) DeleteAccount(ctx context.Context, accountID int64) error {
	if accountID == s.adminID {
		return ErrAdminProtected
	}
	if err := s.ledger.Delete(ctx, accountID); err != nil {
		return err
	}
	log.Info().Str("operation", "delete_account").Int64("account_id", accountID).Msg("Admin override applied")
	return nil
}

// GlobalAirdrop credits amount to every non-administrative account and records
// one AIRDROP transaction for amount times the number of accounts credited.
func (s *AdminService) GlobalAirdrop(ctx context.Context, amount int64) (int, model.Transaction, error) {
	if amount <= 0 {
		return 0, model.Transaction{}, ErrInvalidAmount
	}

	ids := slices.DeleteFunc(s.store.AccountIDs(), func(id int64) bool { return id == s.adminID })
	if amount > model.MaxAmount || (len(ids) > 0 && amount > math.MaxInt64/int64(len(ids))) {
		return 0, model.Transaction{}, ErrInvalidAmount
	}
	updated, err := s.ledger.CreditAll(ctx, ids, amount)
	if err != nil {
		return 0, model.Transaction{}, err
	}

	tx, err := s.txlog.Record(ctx, model.Transaction{
		AccountID:   model.SystemAccountID,
		Username:    model.SystemUsername,
		Kind:        model.TxAirdrop,
		Amount:      amount * int64(len(updated)),
		Description: fmt.Sprintf("Global Airdrop of %d points", amount),
	})
	if err != nil {
		return len(updated), model.Transaction{}, err
	}

	log.Info().Str("operation", "global_airdrop").Int64("amount", amount).Int("accounts", len(updated)).Msg("Admin override applied")
	return len(updated), tx, nil
}

// UpdateConfig validates and stores a new economy config.
func (s *AdminService) UpdateConfig(ctx context.Context, cfg model.EconomyConfig) error {
	if err := s.config.set(ctx, cfg); err != nil {
		return err
	}
	log.Info().Str("operation", "update_config").Interface("config", cfg).Msg("Admin override applied")
	return nil
}

// Payout records an off-platform payout by debiting the account.
func (s *AdminService) Payout(ctx context.Context, accountID, amount int64, note string) (*model.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	c, err := s.ledger.ApplyDelta(ctx, accountID, model.Delta{Points: -amount})
	if err != nil {
		return nil, err
	}
	desc := "Payout"
	if note != "" {
		desc = "Payout: " + note
	}
	if _, err := s.txlog.RecordFor(ctx, c.Account, model.TxPayout, -amount, desc); err != nil {
		return c.Account, err
	}
	log.Info().Str("operation", "payout").Int64("account_id", accountID).Int64("amount", amount).Msg("Admin override applied")
	return c.Account, nil
}

// SaveGiveaway creates or updates a giveaway. A zero ID creates a new one.
func (s *AdminService) SaveGiveaway(ctx context.Context, g model.Giveaway) (model.Giveaway, error) {
	if g.Title == "" {
		return model.Giveaway{}, fmt.Errorf("giveaway title required")
	}
	if g.MaxEntries < 0 || g.EntryCost < 0 {
		return model.Giveaway{}, ErrInvalidAmount
	}
	saved, err := s.store.SaveGiveaway(ctx, g)
	if err != nil {
		return model.Giveaway{}, err
	}
	log.Info().Str("operation", "save_giveaway").Int64("giveaway_id", saved.ID).Msg("Admin override applied")
	return saved, nil
}

// DeleteGiveaway removes a giveaway.
func (s *AdminService) DeleteGiveaway(ctx context.Context, id int64) error {
	if err := s.store.DeleteGiveaway(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	log.Info().Str("operation", "delete_giveaway").Int64("giveaway_id", id).Msg("Admin override applied")
	return nil
}

// CloseGiveaway marks a giveaway inactive. Existing entries are kept.
func (s *AdminService) CloseGiveaway(ctx context.Context, id int64) (model.Giveaway, error) {
	g, err := s.store.Giveaway(id)
	if err != nil {
		return model.Giveaway{}, mapStoreErr(err)
	}
	g.Active = false
	return s.SaveGiveaway(ctx, g)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

const (
	// MinWalletLength is the shortest accepted external wallet address.
	MinWalletLength = 32

	referralCodeLength = 6
	referralAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referralAttempts   = 20
)

// AdminSeed describes the administrative account created at startup.
type AdminSeed struct {
	ID           int64
	Username     string
	Points       int64
	ReferralCode string
}

// AccountService handles signup, the admin seed and self-service edits.
type AccountService struct {
	ledger       *Ledger
	store        *store.Store
	welcomeBonus int64
	now          func() time.Time
}

// NewAccountService creates an AccountService.
func NewAccountService(ledger *Ledger, st *store.Store, welcomeBonus int64, now func() time.Time) *AccountService {
	if now == nil {
		now = time.Now
	}
	return &AccountService{ledger: ledger, store: st, welcomeBonus: welcomeBonus, now: now}
}

// Register creates an account with the welcome bonus. The signup counts as
// the first daily login. referredBy, when not empty, must be an existing code.
func (s *AccountService) Register(ctx context.Context, id int64, username, referredBy string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if _, err := s.ledger.Get(id); err == nil {
		return nil, ErrAccountExists
	}
	if _, err := s.store.AccountByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	}

	acc := &model.Account{
		ID:            id,
		Username:      username,
		Points:        s.welcomeBonus,
		Level:         LevelFor(0),
		LoginStreak:   1,
		LastLoginDate: model.StringPtr(model.DateOf(s.now())),
		Inventory:     []model.InventoryItem{},
		JoinedAt:      s.now(),
	}

	if referredBy = strings.ToUpper(strings.TrimSpace(referredBy)); referredBy != "" {
		if _, err := s.store.AccountByReferralCode(referredBy); err != nil {
			return nil, ErrInvalidReferral
		}
		acc.ReferredBy = &referredBy
	}

	code, err := s.newReferralCode()
	if err != nil {
		return nil, err
	}
	acc.ReferralCode = code

	created, err := s.ledger.Create(ctx, acc)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("account_id", id).Str("username", username).Msg("Account registered")
	return created, nil
}

// EnsureAdmin creates the administrative account if it does not exist yet.
func (s *AccountService) EnsureAdmin(ctx context.Context, seed AdminSeed) (*model.Account, error) {
	if acc, err := s.ledger.Get(seed.ID); err == nil {
		return acc, nil
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	acc, err := s.ledger.Create(ctx, &model.Account{
		ID:           seed.ID,
		Username:     seed.Username,
		Points:       seed.Points,
		Level:        LevelFor(0),
		Inventory:    []model.InventoryItem{},
		ReferralCode: seed.ReferralCode,
		JoinedAt:     s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}
	log.Info().Int64("account_id", seed.ID).Str("username", seed.Username).Msg("Admin account seeded")
	return acc, nil
}

// Get returns an account.
func (s *AccountService) Get(id int64) (*model.Account, error) {
	return s.ledger.Get(id)
}

// SetWallet connects an external wallet address.
func (s *AccountService) SetWallet(ctx context.Context, id int64, wallet string) (*model.Account, error) {
	wallet = strings.TrimSpace(wallet)
	if len(wallet) < MinWalletLength {
		return nil, ErrInvalidWallet
	}
	return s.ledger.ApplyFull(ctx, id, func(a *model.Account) error {
		if a.Blocked {
			return ErrAccountBlocked
		}
		a.Wallet = &wallet
		return nil
	})
}

func (s *AccountService) newReferralCode() (string, error) {
	var b strings.Builder
	for range referralAttempts {
		b.Reset()
		for range referralCodeLength {
			b.WriteByte(referralAlphabet[rand.IntN(len(referralAlphabet))])
		}
		code := b.String()
		if _, err := s.store.AccountByReferralCode(code); errors.Is(err, store.ErrAccountNotFound) {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique referral code")
}

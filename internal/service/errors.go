// Package service implements the points economy: the ledger, progression,
// cooldowns, transaction log, shop, admin overrides and the reward actions
// built on top of them.
package service

import (
	"errors"
	"fmt"
	"time"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

// Economy errors. Every one of them leaves committed state untouched.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCooldownActive      = errors.New("cooldown active")
	ErrAlreadyOwned        = errors.New("item already owned")
	ErrInvariantViolation  = errors.New("invariant violation")
	ErrAccountNotFound     = errors.New("account not found")

	ErrAccountExists     = errors.New("account already registered")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrUsernameRequired  = errors.New("username required")
	ErrInvalidReferral   = errors.New("unknown referral code")
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidBet        = game.ErrInvalidBet
	ErrAccountBlocked    = errors.New("account blocked")
	ErrInvalidWallet     = errors.New("wallet address must be at least 32 characters")
	ErrGiveawayNotFound  = errors.New("giveaway not found")
	ErrGiveawayClosed    = errors.New("giveaway closed")
	ErrMaxEntriesReached = errors.New("giveaway is full")
	ErrProofRequired     = errors.New("proof link required")
	ErrInvalidConfig     = model.ErrInvalidEconomyConfig
	ErrAlreadyClaimed    = errors.New("already claimed today")
	ErrOutOfEnergy       = errors.New("out of energy")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrAdminProtected    = errors.New("administrative account cannot be changed this way")
	ErrUnknownGame       = errors.New("unknown game")
)

// CooldownError reports an action attempted before its gate opens.
// It matches ErrCooldownActive with errors.Is, and a daily login error also
// matches ErrAlreadyClaimed.
type CooldownError struct {
	Kind      model.ActionKind
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown for %s", e.Kind, e.Remaining.Round(time.Second))
}

func (e *CooldownError) Is(target error) bool {
	if target == ErrAlreadyClaimed {
		return e.Kind == model.ActionDailyLogin
	}
	return target == ErrCooldownActive
}

// mapStoreErr translates store errors into service errors.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, store.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrGiveawayNotFound):
		return ErrGiveawayNotFound
	}
	return err
}

// Package handler provides Telegram bot command handlers.
package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/service"
	"kingdom-hub/internal/shop"
)

const separator = "━━━━━━━━━━━━━━━\n"

// displayName returns the sender's username, or first name when it has none.
func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// errorMessage turns a service error into a user-facing reply.
// Unexpected errors are logged and reported generically.
func errorMessage(err error) string {
	var cd *service.CooldownError
	switch {
	case errors.As(err, &cd):
		if cd.Kind == model.ActionDailyLogin {
			return fmt.Sprintf("⏰ Already claimed today. Come back in %s", shop.FormatRemainingTime(cd.Remaining))
		}
		return fmt.Sprintf("⏰ Not yet! Try again in %s", shop.FormatRemainingTime(cd.Remaining))
	case errors.Is(err, service.ErrAccountNotFound):
		return "❌ No account found. Send /start to join the kingdom"
	case errors.Is(err, service.ErrInsufficientBalance):
		return "❌ Not enough points"
	case errors.Is(err, service.ErrAlreadyOwned):
		return "❌ You already own that item"
	case errors.Is(err, service.ErrAccountBlocked):
		return "🚫 Your account is blocked"
	case errors.Is(err, service.ErrOutOfEnergy):
		return "🪫 Out of energy. Wait a few seconds for it to recharge"
	case errors.Is(err, service.ErrInvalidBet):
		return "❌ Invalid bet. Bet 10 to 100 points in steps of 10"
	case errors.Is(err, service.ErrItemNotFound):
		return "❌ No such item. See /shop"
	case errors.Is(err, service.ErrGiveawayNotFound):
		return "❌ No such giveaway. See /giveaways"
	case errors.Is(err, service.ErrGiveawayClosed):
		return "❌ That giveaway is closed"
	case errors.Is(err, service.ErrMaxEntriesReached):
		return "❌ That giveaway is full"
	case errors.Is(err, service.ErrProofRequired):
		return "❌ Please include a proof link"
	case errors.Is(err, service.ErrInvalidWallet):
		return fmt.Sprintf("❌ Wallet address must be at least %d characters", service.MinWalletLength)
	case errors.Is(err, service.ErrUsernameTaken):
		return "❌ That username is taken"
	case errors.Is(err, service.ErrUsernameRequired):
		return "❌ A username is required"
	case errors.Is(err, service.ErrInvalidReferral):
		return "❌ Unknown referral code"
	case errors.Is(err, service.ErrInvalidConfig):
		return "❌ Invalid value: " + err.Error()
	case errors.Is(err, service.ErrInvalidAmount):
		return "❌ Amount must be a positive integer"
	case errors.Is(err, service.ErrAdminProtected):
		return "❌ The administrative account cannot be changed this way"
	case errors.Is(err, service.ErrInvariantViolation):
		return "❌ Rejected: " + err.Error()
	}
	log.Error().Err(err).Msg("Handler failed")
	return "❌ Something went wrong, please try again later"
}

// parseID parses a positive numeric argument.
func parseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

func signed(n int64) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return strconv.FormatInt(n, 10)
}

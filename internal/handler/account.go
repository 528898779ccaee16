package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/service"
)

const historySize = 10

// AccountHandler handles account-related commands.
type AccountHandler struct {
	accounts *service.AccountService
	rewards  *service.RewardService
	shop     *service.ShopService
	ledger   *service.Ledger
	txlog    *service.TransactionLog
	adminID  int64
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	accounts *service.AccountService,
	rewards *service.RewardService,
	shop *service.ShopService,
	ledger *service.Ledger,
	txlog *service.TransactionLog,
	adminID int64,
) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		rewards:  rewards,
		shop:     shop,
		ledger:   ledger,
		txlog:    txlog,
		adminID:  adminID,
	}
}

// HandleStart handles /start [referral_code].
// Creates the account with the welcome bonus if it does not exist.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if acc, err := h.accounts.Get(sender.ID); err == nil {
		return c.Reply(fmt.Sprintf("👋 Welcome back @%s!\n\n💰 Points: %d\n⭐ Level: %d", acc.Username, acc.Points, acc.Level))
	}

	referral := c.Message().Payload
	username := displayName(sender)
	acc, err := h.accounts.Register(ctx, sender.ID, username, referral)
	if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrUsernameRequired) {
		acc, err = h.accounts.Register(ctx, sender.ID, fmt.Sprintf("%s_%d", username, sender.ID), referral)
	}
	if err != nil {
		return c.Reply(errorMessage(err))
	}

	return c.Reply(fmt.Sprintf(
		"🎉 Welcome to the kingdom, @%s!\n\n"+
			"💰 Welcome bonus: %d points\n"+
			"🔗 Your referral code: %s\n\n"+
			"Commands:\n"+
			"/me - your profile\n"+
			"/daily - daily login reward\n"+
			"/spin - spin the wheel\n"+
			"/flip <bet> [heads|tails] - coin flip\n"+
			"/draw - lucky draw\n"+
			"/mine - kingdom miner\n"+
			"/shop - upgrades and boosts\n"+
			"/giveaways - open giveaways\n"+
			"/top - leaderboard",
		acc.Username, acc.Points, acc.ReferralCode,
	))
}

// HandleMe handles /me and shows the profile.
func (h *AccountHandler) HandleMe(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	acc, err := h.accounts.Get(sender.ID)
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	mods, err := h.shop.ModifiersFor(sender.ID)
	if err != nil {
		return c.Reply(errorMessage(err))
	}

	wallet := "not connected"
	if acc.Wallet != nil {
		wallet = *acc.Wallet
	}

	return c.Reply(fmt.Sprintf(
		"📊 Profile\n"+separator+
			"👤 @%s\n"+
			"💰 Points: %d\n"+
			"⭐ Level %d (%.0f%%, %d XP to next)\n"+
			"🔥 Login streak: %d\n"+
			"🎡 Spins: %d, won %d\n"+
			"🎟️ Bonus entries: %d\n"+
			"⚡ Miner energy: %d\n"+
			"⚙️ Boosts: %s\n"+
			"👛 Wallet: %s\n"+
			"🔗 Referral code: %s\n"+separator,
		acc.Username, acc.Points,
		acc.Level, service.ProgressFraction(acc.XP, acc.Level), service.LevelStartXP(acc.Level+1)-acc.XP,
		acc.LoginStreak, acc.TotalSpins, acc.TotalWinnings, acc.BonusEntries,
		h.rewards.Energy.Level(acc.ID, time.Now()),
		service.FormatModifiers(mods), wallet, acc.ReferralCode,
	))
}

// HandleDaily handles /daily.
func (h *AccountHandler) HandleDaily(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	res, err := h.rewards.ClaimDaily(context.Background(), sender.ID)
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	return c.Reply(fmt.Sprintf("✅ Day %d login streak!\n💰 +%d points (now %d)", res.Streak, res.Reward, res.Account.Points))
}

// HandleWallet handles /wallet [address].
func (h *AccountHandler) HandleWallet(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) == 0 {
		acc, err := h.accounts.Get(sender.ID)
		if err != nil {
			return c.Reply(errorMessage(err))
		}
		if acc.Wallet == nil {
			return c.Reply("👛 No wallet connected\nUsage: /wallet <address>")
		}
		return c.Reply("👛 Connected wallet: " + *acc.Wallet)
	}

	acc, err := h.accounts.SetWallet(context.Background(), sender.ID, args[0])
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	return c.Reply("✅ Wallet connected: " + *acc.Wallet)
}

// HandleHistory handles /history and lists the latest transactions.
func (h *AccountHandler) HandleHistory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	txs := h.txlog.ListFor(sender.ID, historySize)
	if len(txs) == 0 {
		return c.Reply("📜 No transactions yet")
	}
	return c.Reply(formatHistory(txs))
}

func formatHistory(txs []model.Transaction) string {
	var b strings.Builder
	b.WriteString("📜 Recent transactions\n")
	b.WriteString(separator)
	for _, tx := range txs {
		fmt.Fprintf(&b, "%s %s %s\n", tx.Timestamp.Format("01-02 15:04"), signed(tx.Amount), tx.Description)
	}
	return b.String()
}

// HandleTop handles /top and shows the top 10 accounts by points.
func (h *AccountHandler) HandleTop(c tele.Context) error {
	top := service.Leaderboard(h.ledger.List(), h.adminID, service.DefaultLeaderboardSize)
	if len(top) == 0 {
		return c.Reply("📊 No rankings yet")
	}
	return c.Reply(formatLeaderboard(top))
}

func formatLeaderboard(top []*model.Account) string {
	medals := []string{"🥇", "🥈", "🥉"}
	var b strings.Builder
	b.WriteString("🏆 Kingdom Leaderboard\n")
	b.WriteString(separator)
	for i, acc := range top {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fmt.Fprintf(&b, "%s @%s: %d (Lvl %d)\n", rank, acc.Username, acc.Points, acc.Level)
	}
	b.WriteString(separator)
	return b.String()
}

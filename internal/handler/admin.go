package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/service"
)

// AdminHandler handles admin-related commands.
type AdminHandler struct {
	admin  *service.AdminService
	config *service.ConfigStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *service.AdminService, config *service.ConfigStore) *AdminHandler {
	return &AdminHandler{admin: admin, config: config}
}

// HandleAdminSet handles /admin_set <account_id> <field> <value>.
// Fields: points, xp, streak, username, wallet (use "-" to clear), blocked.
func (h *AdminHandler) HandleAdminSet(c tele.Context) error {
	args := c.Args()
	if len(args) < 3 {
		return c.Reply("❌ Usage: /admin_set <account_id> <points|xp|streak|username|wallet|blocked> <value>")
	}
	id, ok := parseID(args[0])
	if !ok {
		return c.Reply("❌ Account id must be a number")
	}

	fields, err := parseAccountField(args[1], args[2])
	if err != nil {
		return c.Reply("❌ " + err.Error())
	}

	acc, err := h.admin.SetAccountFields(context.Background(), id, fields)
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "admin_set", id)
	return c.Reply(fmt.Sprintf("✅ Updated @%s (ID: %d)\n💰 Points: %d\n⭐ XP: %d (Lvl %d)\n🔥 Streak: %d\n🚫 Blocked: %v",
		acc.Username, acc.ID, acc.Points, acc.XP, acc.Level, acc.LoginStreak, acc.Blocked))
}

func parseAccountField(field, value string) (service.AccountFields, error) {
	var f service.AccountFields
	field = strings.ToLower(field)
	switch field {
	case "points", "xp":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return f, fmt.Errorf("%s must be an integer", field)
		}
		if field == "xp" {
			f.XP = &n
		} else {
			f.Points = &n
		}
	case "streak":
		n, err := strconv.Atoi(value)
		if err != nil {
			return f, fmt.Errorf("streak must be an integer")
		}
		f.LoginStreak = &n
	case "username":
		f.Username = &value
	case "wallet":
		if value == "-" {
			value = ""
		}
		f.Wallet = &value
	case "blocked":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return f, fmt.Errorf("blocked must be true or false")
		}
		f.Blocked = &b
	default:
		return f, fmt.Errorf("unknown field %q", field)
	}
	return f, nil
}

// HandleAdminBlock handles /admin_block <account_id> [off].
func (h *AdminHandler) HandleAdminBlock(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /admin_block <account_id> [off]")
	}
	id, ok := parseID(args[0])
	if !ok {
		return c.Reply("❌ Account id must be a number")
	}
	blocked := len(args) < 2 || args[1] != "off"

	acc, err := h.admin.SetBlocked(context.Background(), id, blocked)
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "admin_block", id)
	if blocked {
		return c.Reply(fmt.Sprintf("🚫 @%s is blocked", acc.Username))
	}
	return c.Reply(fmt.Sprintf("✅ @%s is unblocked", acc.Username))
}

// HandleAdminDelete handles /admin_delete <account_id>.
func (h *AdminHandler) HandleAdminDelete(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /admin_delete <account_id>")
	}
	id, ok := parseID(args[0])
	if !ok {
		return c.Reply("❌ Account id must be a number")
	}
	if err := h.admin.DeleteAccount(context.Background(), id); err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "admin_delete", id)
	return c.Reply(fmt.Sprintf("🗑️ Account %d deleted", id))
}

// HandleAirdrop handles /airdrop <amount>.
func (h *AdminHandler) HandleAirdrop(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /airdrop <amount>")
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply(errorMessage(service.ErrInvalidAmount))
	}

	count, tx, err := h.admin.GlobalAirdrop(context.Background(), amount)
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "airdrop", 0)
	return c.Reply(fmt.Sprintf("🪂 Airdrop complete\n\n🎁 %d points each\n👥 %d accounts\n💰 %d points total", amount, count, tx.Amount))
}

// HandlePayout handles /payout <account_id> <amount> [note].
func (h *AdminHandler) HandlePayout(c tele.Context) error {
	args := c.Args()
	if len(args) < 2 {
		return c.Reply("❌ Usage: /payout <account_id> <amount> [note]")
	}
	id, ok := parseID(args[0])
	if !ok {
		return c.Reply("❌ Account id must be a number")
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return c.Reply(errorMessage(service.ErrInvalidAmount))
	}

	acc, err := h.admin.Payout(context.Background(), id, amount, strings.Join(args[2:], " "))
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "payout", id)
	return c.Reply(fmt.Sprintf("✅ Paid out %d points to @%s\n💰 Points left: %d", amount, acc.Username, acc.Points))
}

// configKeys maps /config keys to setters on the economy config.
var configKeys = map[string]func(*model.EconomyConfig, float64){
	"spin_win_rate":             func(c *model.EconomyConfig, v float64) { c.SpinWinRate = v },
	"coin_flip_win_rate":        func(c *model.EconomyConfig, v float64) { c.CoinFlipWinRate = v },
	"lucky_draw_cooldown_hours": func(c *model.EconomyConfig, v float64) { c.LuckyDrawCooldownHours = v },
	"spin_cooldown_hours":       func(c *model.EconomyConfig, v float64) { c.SpinCooldownHours = v },
	"global_point_multiplier":   func(c *model.EconomyConfig, v float64) { c.GlobalPointMultiplier = v },
	"miner_rate_per_click":      func(c *model.EconomyConfig, v float64) { c.MinerRatePerClick = int64(v) },
	"xp_multiplier":             func(c *model.EconomyConfig, v float64) { c.XPMultiplier = v },
}

// HandleConfig handles /config [key value]. Without arguments it shows the config.
func (h *AdminHandler) HandleConfig(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Reply(formatConfig(h.config.Get()))
	}
	if len(args) < 2 {
		return c.Reply("❌ Usage: /config <key> <value>")
	}

	set, ok := configKeys[strings.ToLower(args[0])]
	if !ok {
		return c.Reply(fmt.Sprintf("❌ Unknown key %q", args[0]))
	}
	v, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return c.Reply("❌ Value must be a number")
	}

	cfg := h.config.Get()
	set(&cfg, v)
	if err := h.admin.UpdateConfig(context.Background(), cfg); err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "config", 0)
	return c.Reply("✅ Config updated\n\n" + formatConfig(cfg))
}

func formatConfig(cfg model.EconomyConfig) string {
	return fmt.Sprintf("⚙️ Economy config\n"+separator+
		"spin_win_rate: %g\n"+
		"coin_flip_win_rate: %g\n"+
		"lucky_draw_cooldown_hours: %g\n"+
		"spin_cooldown_hours: %g\n"+
		"global_point_multiplier: %g\n"+
		"miner_rate_per_click: %d\n"+
		"xp_multiplier: %g",
		cfg.SpinWinRate, cfg.CoinFlipWinRate, cfg.LuckyDrawCooldownHours, cfg.SpinCooldownHours,
		cfg.GlobalPointMultiplier, cfg.MinerRatePerClick, cfg.XPMultiplier)
}

// HandleGiveawayAdd handles /giveaway_add <cost> <max_entries> <end_date> <title...>.
func (h *AdminHandler) HandleGiveawayAdd(c tele.Context) error {
	args := c.Args()
	if len(args) < 4 {
		return c.Reply("❌ Usage: /giveaway_add <cost> <max_entries> <end_date> <title>")
	}
	cost, err1 := strconv.ParseInt(args[0], 10, 64)
	maxEntries, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return c.Reply("❌ Cost and max entries must be numbers")
	}

	g, err := h.admin.SaveGiveaway(context.Background(), model.Giveaway{
		Title:      strings.Join(args[3:], " "),
		Prize:      strings.Join(args[3:], " "),
		EndDate:    args[2],
		Active:     true,
		MaxEntries: maxEntries,
		EntryCost:  cost,
	})
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "giveaway_add", 0)
	return c.Reply(fmt.Sprintf("✅ Giveaway #%d created", g.ID))
}

// HandleGiveawayClose handles /giveaway_close <id> and /giveaway_delete <id>.
func (h *AdminHandler) HandleGiveawayClose(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /giveaway_close <id>")
	}
	id, ok := parseID(args[0])
	if !ok {
		return c.Reply("❌ Giveaway id must be a number")
	}

	if strings.HasPrefix(c.Text(), "/giveaway_delete") {
		if err := h.admin.DeleteGiveaway(context.Background(), id); err != nil {
			return c.Reply(errorMessage(err))
		}
		h.logOperation(c, "giveaway_delete", 0)
		return c.Reply(fmt.Sprintf("🗑️ Giveaway #%d deleted", id))
	}

	if _, err := h.admin.CloseGiveaway(context.Background(), id); err != nil {
		return c.Reply(errorMessage(err))
	}
	h.logOperation(c, "giveaway_close", 0)
	return c.Reply(fmt.Sprintf("🔒 Giveaway #%d closed", id))
}

func (h *AdminHandler) logOperation(c tele.Context, operation string, targetID int64) {
	evt := log.Info().Str("operation", operation)
	if sender := c.Sender(); sender != nil {
		evt = evt.Int64("admin_id", sender.ID)
	}
	if targetID != 0 {
		evt = evt.Int64("target_id", targetID)
	}
	evt.Msg("Admin command executed")
}

package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/game/coinflip"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/service"
)

// GameHandler handles the reward action commands.
type GameHandler struct {
	rewards  *service.RewardService
	registry *game.Registry
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(rewards *service.RewardService, registry *game.Registry) *GameHandler {
	return &GameHandler{rewards: rewards, registry: registry}
}

// HandleSpin handles /spin.
func (h *GameHandler) HandleSpin(c tele.Context) error {
	return h.play(c, model.ActionSpin, game.Request{}, "🎡 Spinning the wheel...")
}

// HandleFlip handles /flip <bet> [heads|tails].
func (h *GameHandler) HandleFlip(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 {
		return c.Reply(fmt.Sprintf("❌ Usage: /flip <bet> [heads|tails]\nBet %d to %d in steps of %d", coinflip.MinBet, coinflip.MaxBet, coinflip.BetStep))
	}
	bet, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Reply("❌ Bet must be a whole number")
	}
	req := game.Request{Bet: bet}
	if len(args) > 1 {
		req.Choice = args[1]
	}
	return h.play(c, model.ActionCoinFlip, req, "🪙 Flipping the coin...")
}

// HandleDraw handles /draw.
func (h *GameHandler) HandleDraw(c tele.Context) error {
	return h.play(c, model.ActionLuckyDraw, game.Request{}, "🎁 Drawing a prize...")
}

// HandleMine handles /mine.
func (h *GameHandler) HandleMine(c tele.Context) error {
	return h.play(c, model.ActionMiner, game.Request{}, "")
}

func (h *GameHandler) play(c tele.Context, kind model.ActionKind, req game.Request, pending string) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if pending != "" {
		_ = c.Reply(pending)
	}
	res, err := h.rewards.Play(context.Background(), sender.ID, kind, req)
	if err != nil {
		return c.Reply(errorMessage(err))
	}

	name := string(kind)
	if g, ok := h.registry.Get(kind); ok {
		name = g.Name()
	}
	return c.Reply(formatPlay(name, res))
}

func formatPlay(name string, res *service.PlayResult) string {
	var b strings.Builder
	out := res.Outcome

	switch {
	case res.Kind == model.ActionMiner:
		fmt.Fprintf(&b, "⛏️ %s +%d points | ⚡ %d energy left\n", name, res.Points, res.Energy)
	case !out.Commit:
		fmt.Fprintf(&b, "😶 %s: %s\nNo points this time, come back later!\n", name, out.Label)
	case res.Points < 0:
		fmt.Fprintf(&b, "😢 %s: %s\n💸 %d points\n", name, out.Label, res.Points)
	default:
		fmt.Fprintf(&b, "🎉 %s: %s\n", name, out.Label)
		if res.Points > 0 {
			fmt.Fprintf(&b, "💰 +%d points\n", res.Points)
		}
		if out.BonusEntries > 0 {
			fmt.Fprintf(&b, "🎟️ +%d free giveaway entry\n", out.BonusEntries)
		}
	}

	if side, ok := out.Details["landed"].(string); ok {
		fmt.Fprintf(&b, "🪙 The coin landed on %s\n", side)
	}
	for _, level := range res.LevelsUp {
		fmt.Fprintf(&b, "🆙 Level %d reached! +%d bonus points\n", level, int64(level)*service.LevelUpBonusPerLevel)
	}
	if res.Account != nil {
		fmt.Fprintf(&b, "💼 Balance: %d points", res.Account.Points)
	}
	return b.String()
}

package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/service"
)

// GiveawayHandler handles giveaway listing and entry.
type GiveawayHandler struct {
	giveaways *service.GiveawayService
}

// NewGiveawayHandler creates a new GiveawayHandler.
func NewGiveawayHandler(giveaways *service.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{giveaways: giveaways}
}

// HandleGiveaways handles /giveaways and lists the open giveaways.
func (h *GiveawayHandler) HandleGiveaways(c tele.Context) error {
	open := h.giveaways.List(true)
	if len(open) == 0 {
		return c.Reply("🎁 No open giveaways right now")
	}

	var b strings.Builder
	b.WriteString("🎁 Open giveaways\n")
	b.WriteString(separator)
	for _, g := range open {
		b.WriteString(formatGiveaway(g, h.giveaways.EntryCount(g.ID)))
	}
	b.WriteString("Enter with /enter <id> <proof_link>")
	return c.Reply(b.String())
}

func formatGiveaway(g model.Giveaway, entries int) string {
	limit := "unlimited"
	if g.MaxEntries > 0 {
		limit = fmt.Sprintf("%d", g.MaxEntries)
	}
	s := fmt.Sprintf("#%d %s\n   🏆 %s | ends %s\n   🎟️ %d points, %d/%s entries\n", g.ID, g.Title, g.Prize, g.EndDate, g.EntryCost, entries, limit)
	if g.TweetLink != "" {
		s += "   🔗 " + g.TweetLink + "\n"
	}
	return s
}

// HandleEnter handles /enter <id> <proof_link>.
func (h *GiveawayHandler) HandleEnter(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) < 2 {
		return c.Reply("❌ Usage: /enter <id> <proof_link>")
	}
	id, ok := parseID(args[0])
	if !ok {
		return c.Reply("❌ Giveaway id must be a number")
	}

	res, err := h.giveaways.Enter(context.Background(), sender.ID, id, args[1])
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	if res.UsedBonus {
		return c.Reply(fmt.Sprintf("✅ Entered giveaway #%d with a free bonus entry", id))
	}
	return c.Reply(fmt.Sprintf("✅ Entered giveaway #%d\n💸 %d points (now %d)", id, res.Transaction.Amount, res.Account.Points))
}

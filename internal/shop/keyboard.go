package shop

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/model"
)

// Callback data prefixes
const (
	CallbackShopItem    = "shop_item:" // shop_item:miner_mk2
	CallbackShopBuy     = "shop_buy:"  // shop_buy:miner_mk2
	CallbackShopCancel  = "shop_cancel"
	CallbackShopRefresh = "shop_refresh"
)

// BuildShopPanel creates the main shop panel with one button per item, two per row.
func BuildShopPanel(items []Item) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	var rows []tele.Row
	var currentRow []tele.Btn
	for i, item := range items {
		btn := markup.Data(
			fmt.Sprintf("%s %s (%d)", item.Emoji, item.Name, item.Price),
			CallbackShopItem+item.ID,
		)
		currentRow = append(currentRow, btn)
		if len(currentRow) == 2 || i == len(items)-1 {
			rows = append(rows, markup.Row(currentRow...))
			currentRow = nil
		}
	}

	rows = append(rows, markup.Row(markup.Data("🔄 Refresh", CallbackShopRefresh)))
	markup.Inline(rows...)
	return markup
}

// BuildConfirmPanel creates the purchase confirmation panel
func BuildConfirmPanel(itemID string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("✅ Buy", CallbackShopBuy+itemID),
		markup.Data("❌ Cancel", CallbackShopCancel),
	))
	return markup
}

// FormatShopMessage creates the shop welcome message
func FormatShopMessage(points int64) string {
	msg := "🏪 Kingdom Shop\n"
	msg += "━━━━━━━━━━━━━━━\n"
	msg += fmt.Sprintf("💰 Your points: %d\n", points)
	msg += "━━━━━━━━━━━━━━━\n"
	msg += "Tap an item to see the details:"
	return msg
}

// FormatItemDetail creates the item detail message
func FormatItemDetail(item Item, points int64, owned bool) string {
	msg := fmt.Sprintf("%s %s\n", item.Emoji, item.Name)
	msg += "━━━━━━━━━━━━━━━\n"
	msg += fmt.Sprintf("💰 Price: %d points\n", item.Price)

	switch item.Kind {
	case KindTimed:
		msg += fmt.Sprintf("⏱️ Lasts: %s (buying again extends it)\n", FormatDuration(item.Duration))
	case KindPermanent:
		msg += "⏱️ Permanent upgrade\n"
	default:
		msg += "⏱️ Cosmetic\n"
	}

	msg += fmt.Sprintf("📝 %s\n", item.Description)
	msg += "━━━━━━━━━━━━━━━\n"
	msg += fmt.Sprintf("💰 Your points: %d\n", points)

	switch {
	case owned && !item.Stackable():
		msg += "✅ Already owned"
	case points < item.Price:
		msg += "❌ Not enough points!"
	default:
		msg += "Confirm purchase?"
	}
	return msg
}

// FormatInventoryMessage creates the inventory display message
func FormatInventoryMessage(inventory []model.InventoryItem, catalog *Catalog, now time.Time) string {
	if len(inventory) == 0 {
		return "🎒 Your bag is empty\n\nVisit the shop with /shop"
	}

	var b strings.Builder
	b.WriteString("🎒 My Bag\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	for _, inv := range inventory {
		item, ok := catalog.Get(inv.ItemID)
		if !ok {
			fmt.Fprintf(&b, "❔ %s x%d\n", inv.ItemID, inv.Quantity)
			continue
		}
		fmt.Fprintf(&b, "%s %s x%d\n", item.Emoji, item.Name, inv.Quantity)
		if inv.ActiveUntil != nil {
			fmt.Fprintf(&b, "   Remaining: %s\n", FormatRemainingTime(inv.ActiveUntil.Sub(now)))
		}
	}
	return b.String()
}

// FormatRemainingTime formats remaining time for display
func FormatRemainingTime(remaining time.Duration) string {
	if remaining <= 0 {
		return "expired"
	}

	hours := int64(remaining.Hours())
	minutes := int64(remaining.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", max(minutes, 1))
}

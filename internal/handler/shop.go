package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"kingdom-hub/internal/service"
	"kingdom-hub/internal/shop"
)

// ShopHandler handles shop-related commands
type ShopHandler struct {
	shop     *service.ShopService
	accounts *service.AccountService
	catalog  *shop.Catalog
	now      func() time.Time
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService *service.ShopService, accounts *service.AccountService, catalog *shop.Catalog) *ShopHandler {
	return &ShopHandler{shop: shopService, accounts: accounts, catalog: catalog, now: time.Now}
}

func (h *ShopHandler) points(id int64) int64 {
	acc, err := h.accounts.Get(id)
	if err != nil {
		return 0
	}
	return acc.Points
}

// HandleShop handles /shop and shows the shop panel
func (h *ShopHandler) HandleShop(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if _, err := h.accounts.Get(sender.ID); err != nil {
		return c.Reply(errorMessage(err))
	}
	return c.Send(shop.FormatShopMessage(h.points(sender.ID)), shop.BuildShopPanel(h.shop.Items()))
}

// HandleBuy handles /buy <item_id>
func (h *ShopHandler) HandleBuy(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ Usage: /buy <item_id>\nSee /shop for the catalog")
	}

	item, ok := h.shop.Item(args[0])
	if !ok {
		return c.Reply(errorMessage(service.ErrItemNotFound))
	}
	acc, err := h.shop.Purchase(context.Background(), sender.ID, item.ID)
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	return c.Reply(fmt.Sprintf("✅ Purchased %s %s\n💰 Points left: %d", item.Emoji, item.Name, acc.Points))
}

// HandleShopCallback handles shop button callbacks
func (h *ShopHandler) HandleShopCallback(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	data := callbackData(callback.Data)
	switch {
	case data == shop.CallbackShopRefresh, data == shop.CallbackShopCancel:
		return c.Edit(shop.FormatShopMessage(h.points(sender.ID)), shop.BuildShopPanel(h.shop.Items()))

	case strings.HasPrefix(data, shop.CallbackShopItem):
		item, ok := h.shop.Item(strings.TrimPrefix(data, shop.CallbackShopItem))
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Item not found"})
		}
		owned := false
		if acc, err := h.accounts.Get(sender.ID); err == nil {
			owned = acc.FindItem(item.ID) >= 0
		}
		return c.Edit(shop.FormatItemDetail(item, h.points(sender.ID), owned), shop.BuildConfirmPanel(item.ID))

	case strings.HasPrefix(data, shop.CallbackShopBuy):
		itemID := strings.TrimPrefix(data, shop.CallbackShopBuy)
		item, ok := h.shop.Item(itemID)
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "❌ Item not found", ShowAlert: true})
		}
		if _, err := h.shop.Purchase(context.Background(), sender.ID, itemID); err != nil {
			return c.Respond(&tele.CallbackResponse{Text: errorMessage(err), ShowAlert: true})
		}
		if err := c.Respond(&tele.CallbackResponse{Text: "✅ Purchased " + item.Emoji + " " + item.Name}); err != nil {
			log.Debug().Err(err).Msg("Failed to answer callback")
		}
		return c.Edit(shop.FormatShopMessage(h.points(sender.ID)), shop.BuildShopPanel(h.shop.Items()))
	}
	return nil
}

// HandleBag handles /bag to show the inventory
func (h *ShopHandler) HandleBag(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	acc, err := h.accounts.Get(sender.ID)
	if err != nil {
		return c.Reply(errorMessage(err))
	}
	return c.Reply(shop.FormatInventoryMessage(acc.Inventory, h.catalog, h.now()))
}

// callbackData strips the markers telebot adds around inline button data.
func callbackData(data string) string {
	data = strings.TrimPrefix(data, "\f")
	return strings.TrimSuffix(data, "|")
}

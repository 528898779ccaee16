package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/shop"
)

// Modifiers are the shop effects that apply to an account's rewards.
type Modifiers struct {
	MiningBonus     int64
	PointMultiplier float64
}

// ShopService sells catalog items and reports the modifiers they grant.
type ShopService struct {
	ledger  *Ledger
	txlog   *TransactionLog
	catalog *shop.Catalog
	now     func() time.Time
}

// NewShopService creates a ShopService.
func NewShopService(ledger *Ledger, txlog *TransactionLog, catalog *shop.Catalog, now func() time.Time) *ShopService {
	return &ShopService{ledger: ledger, txlog: txlog, catalog: catalog, now: now}
}

// Items returns the catalog in display order.
func (s *ShopService) Items() []shop.Item {
	return s.catalog.All()
}

// Item returns one catalog item.
func (s *ShopService) Item(id string) (shop.Item, bool) {
	return s.catalog.Get(id)
}

// ModifiersFor returns the account's current shop modifiers.
func (s *ShopService) ModifiersFor(accountID int64) (Modifiers, error) {
	acc, err := s.ledger.Get(accountID)
	if err != nil {
		return Modifiers{}, err
	}
	return ModifiersOf(acc, s.catalog, s.now()), nil
}

// ModifiersOf sums permanent mining bonuses and picks the highest timed
// multiplier that has not expired. Expired items stay in the inventory.
func ModifiersOf(acc *model.Account, catalog *shop.Catalog, now time.Time) Modifiers {
	m := Modifiers{PointMultiplier: 1}
	for _, inv := range acc.Inventory {
		item, ok := catalog.Get(inv.ItemID)
		if !ok {
			continue
		}
		switch item.Kind {
		case shop.KindPermanent:
			m.MiningBonus += item.MiningBonus * int64(inv.Quantity)
		case shop.KindTimed:
			if inv.ActiveUntil != nil && now.Before(*inv.ActiveUntil) && item.PointMultiplier > m.PointMultiplier {
				m.PointMultiplier = item.PointMultiplier
			}
		}
	}
	return m
}

// Purchase buys one unit of itemID. Non-stackable items can be owned once;
// buying a timed item again extends it from its current expiry.
func (s *ShopService) Purchase(ctx context.Context, accountID int64, itemID string) (*model.Account, error) {
	item, ok := s.catalog.Get(itemID)
	if !ok {
		return nil, ErrItemNotFound
	}

	var result *model.Account
	err := s.ledger.WithAccount(accountID, func(sess *Session) error {
		acc, err := sess.Account()
		if err != nil {
			return err
		}
		if acc.Blocked {
			return ErrAccountBlocked
		}
		if !item.Stackable() && acc.FindItem(itemID) >= 0 {
			return ErrAlreadyOwned
		}
		if acc.Points < item.Price {
			return ErrInsufficientBalance
		}

		if _, err := sess.ApplyDelta(ctx, model.Delta{Points: -item.Price}); err != nil {
			return err
		}

		now := s.now()
		acc, err = sess.ApplyFull(ctx, func(a *model.Account) error {
			addToInventory(a, item, now)
			return nil
		})
		if err != nil {
			// Give the money back so the purchase is all or nothing.
			if _, refundErr := sess.ApplyDelta(ctx, model.Delta{Points: item.Price}); refundErr != nil {
				log.Error().Err(refundErr).Int64("account_id", accountID).Str("item", itemID).Msg("Failed to refund purchase")
			}
			return err
		}
		result = acc

		_, err = s.txlog.RecordFor(ctx, acc, model.TxShopPurchase, -item.Price, "Purchased "+item.Name)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("account_id", accountID).Str("item", itemID).Int64("price", item.Price).Msg("Item purchased")
	return result, nil
}

func addToInventory(a *model.Account, item shop.Item, now time.Time) {
	idx := a.FindItem(item.ID)
	if idx < 0 {
		inv := model.InventoryItem{ItemID: item.ID, Quantity: 1}
		if item.Kind == shop.KindTimed {
			until := now.Add(item.Duration)
			inv.ActiveUntil = &until
		}
		a.Inventory = append(a.Inventory, inv)
		return
	}

	inv := &a.Inventory[idx]
	inv.Quantity++
	if item.Kind == shop.KindTimed {
		from := now
		if inv.ActiveUntil != nil && inv.ActiveUntil.After(now) {
			from = *inv.ActiveUntil
		}
		until := from.Add(item.Duration)
		inv.ActiveUntil = &until
	}
}

// FormatModifiers is a one-line summary for display.
func FormatModifiers(m Modifiers) string {
	return fmt.Sprintf("mining +%d, points x%.1f", m.MiningBonus, m.PointMultiplier)
}

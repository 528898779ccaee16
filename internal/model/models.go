// Package model defines the data models for the rewards hub economy.
package model

import "time"

// DateLayout is the calendar-date format used for login tracking.
const DateLayout = "2006-01-02"

// DateOf returns the local calendar date of t in DateLayout form.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// MaxAmount bounds every account balance and counter. Commits that would
// exceed it are rejected rather than wrapped.
const MaxAmount int64 = 1_000_000_000_000_000

// Account is a player account in the economy.
// Points is never negative and Level always equals the level derived from XP
// once a commit has gone through the ledger.
type Account struct {
	ID            int64           `json:"id"`
	Username      string          `json:"username"`
	Points        int64           `json:"points"`
	XP            int64           `json:"xp"`
	Level         int             `json:"level"`
	LoginStreak   int             `json:"loginStreak"`
	LastLoginDate *string         `json:"lastLoginDate,omitempty"`
	TotalSpins    int64           `json:"totalSpins"`
	TotalWinnings int64           `json:"totalWinnings"`
	Blocked       bool            `json:"blocked"`
	Inventory     []InventoryItem `json:"inventory"`
	Wallet        *string         `json:"wallet,omitempty"`
	ReferralCode  string          `json:"referralCode"`
	ReferredBy    *string         `json:"referredBy,omitempty"`
	BonusEntries  int             `json:"bonusEntries"`
	JoinedAt      time.Time       `json:"joinedAt"`
}

// InventoryItem is an owned catalog item. A nil ActiveUntil means permanent.
type InventoryItem struct {
	ItemID      string     `json:"itemId"`
	Quantity    int        `json:"quantity"`
	ActiveUntil *time.Time `json:"activeUntil,omitempty"`
}

// Clone returns a deep copy of the account so callers can mutate it freely.
func (a *Account) Clone() *Account {
	c := *a
	if a.Inventory != nil {
		c.Inventory = make([]InventoryItem, len(a.Inventory))
		for i, item := range a.Inventory {
			c.Inventory[i] = item
			if item.ActiveUntil != nil {
				until := *item.ActiveUntil
				c.Inventory[i].ActiveUntil = &until
			}
		}
	}
	c.LastLoginDate = cloneString(a.LastLoginDate)
	c.Wallet = cloneString(a.Wallet)
	c.ReferredBy = cloneString(a.ReferredBy)
	return &c
}

// FindItem returns the index of the inventory entry for itemID, or -1.
func (a *Account) FindItem(itemID string) int {
	for i, item := range a.Inventory {
		if item.ItemID == itemID {
			return i
		}
	}
	return -1
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// ActionKind identifies a cooldown-gated reward action.
type ActionKind string

// Reward action kinds.
const (
	ActionSpin       ActionKind = "spin"
	ActionCoinFlip   ActionKind = "coin_flip"
	ActionLuckyDraw  ActionKind = "lucky_draw"
	ActionMiner      ActionKind = "miner"
	ActionDailyLogin ActionKind = "daily_login"
)

// CooldownRecord stores the last execution of an action kind for an account.
type CooldownRecord struct {
	AccountID     int64      `json:"accountId"`
	Kind          ActionKind `json:"kind"`
	LastExecution time.Time  `json:"lastExecution"`
}

// Interaction is a lightweight engagement log entry. It is not audit-critical.
type Interaction struct {
	AccountID int64     `json:"accountId"`
	Username  string    `json:"username"`
	Kind      string    `json:"kind"`
	Reward    *string   `json:"reward,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Delta is a balance change applied through the ledger.
// XP is the raw gain before the configured XP multiplier.
type Delta struct {
	Points   int64
	XP       int64
	Spins    int64
	Winnings int64
}

package model

import "time"

// TxKind categorizes a balance-affecting event.
type TxKind string

// Transaction kinds. The set is closed.
const (
	TxAirdrop          TxKind = "AIRDROP"
	TxGameWin          TxKind = "GAME_WIN"
	TxGameLoss         TxKind = "GAME_LOSS"
	TxManualAdjustment TxKind = "MANUAL_ADJUSTMENT"
	TxPayout           TxKind = "PAYOUT"
	TxGiveawayEntry    TxKind = "GIVEAWAY_ENTRY"
	TxMinerClaim       TxKind = "MINER_CLAIM"
	TxDailyLogin       TxKind = "DAILY_LOGIN"
	TxShopPurchase     TxKind = "SHOP_PURCHASE"
)

// TxKinds returns every transaction kind in declaration order.
func TxKinds() []TxKind {
	return []TxKind{
		TxAirdrop, TxGameWin, TxGameLoss, TxManualAdjustment, TxPayout,
		TxGiveawayEntry, TxMinerClaim, TxDailyLogin, TxShopPurchase,
	}
}

// Valid reports whether k is a member of the closed kind set.
func (k TxKind) Valid() bool {
	for _, kind := range TxKinds() {
		if kind == k {
			return true
		}
	}
	return false
}

// TxStatus is the settlement state of a transaction.
// Only TxCompleted is produced today; the others are reserved for off-chain payouts.
type TxStatus string

const (
	TxCompleted TxStatus = "COMPLETED"
	TxPending   TxStatus = "PENDING"
	TxFailed    TxStatus = "FAILED"
)

// SystemAccountID is used on transactions that are not tied to one account.
const SystemAccountID int64 = 0

// SystemUsername is the display name for system transactions.
const SystemUsername = "SYSTEM"

// Transaction is an immutable audit record.
// Amount is the signed delta applied to points, 0 for non-monetary events.
type Transaction struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"accountId"`
	Username    string    `json:"username"`
	Kind        TxKind    `json:"kind"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Status      TxStatus  `json:"status"`
}

package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/metrics"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

// TransactionLog is the append-only audit trail. It has no update or delete API.
type TransactionLog struct {
	store *store.Store
}

// NewTransactionLog creates a TransactionLog over the store.
func NewTransactionLog(st *store.Store) *TransactionLog {
	return &TransactionLog{store: st}
}

// Record assigns an id and timestamp to entry and prepends it to the log.
func (t *TransactionLog) Record(ctx context.Context, entry model.Transaction) (model.Transaction, error) {
	if !entry.Kind.Valid() {
		return model.Transaction{}, fmt.Errorf("%w: unknown transaction kind %q", ErrInvariantViolation, entry.Kind)
	}
	entry.Status = model.TxCompleted

	tx, err := t.store.PrependTransaction(ctx, entry)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to record transaction: %w", err)
	}

	metrics.TransactionsTotal.WithLabelValues(string(tx.Kind)).Inc()
	log.Debug().
		Int64("tx_id", tx.ID).
		Int64("account_id", tx.AccountID).
		Str("kind", string(tx.Kind)).
		Int64("amount", tx.Amount).
		Msg("Transaction recorded")
	return tx, nil
}

// RecordFor is Record for an account's event.
func (t *TransactionLog) RecordFor(ctx context.Context, acc *model.Account, kind model.TxKind, amount int64, description string) (model.Transaction, error) {
	return t.Record(ctx, model.Transaction{
		AccountID:   acc.ID,
		Username:    acc.Username,
		Kind:        kind,
		Amount:      amount,
		Description: description,
	})
}

// List returns the newest entries first. A non-positive limit returns all.
func (t *TransactionLog) List(limit int) []model.Transaction {
	return t.store.Transactions(limit)
}

// ListFor returns one account's entries, newest first.
func (t *TransactionLog) ListFor(accountID int64, limit int) []model.Transaction {
	return t.store.TransactionsFor(accountID, limit)
}

package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/repository"
)

// EconomyConfig returns the stored overrides merged with the deployment defaults.
func (s *Store) EconomyConfig() model.EconomyConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.MergeEconomyConfig(s.defaults, s.config)
}

// SetEconomyConfig persists a full economy config.
func (s *Store) SetEconomyConfig(ctx context.Context, cfg model.EconomyConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	partial := cfg.Partial()
	if err := s.persist(ctx, repository.KeyEconomyConfig, partial); err != nil {
		return err
	}
	s.config = partial
	return nil
}

// PrependTransaction assigns an id and timestamp to tx and puts it at the head of the log.
// Ids are strictly increasing and never lower than the creation time in milliseconds.
func (s *Store) PrependTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	tx.ID = max(s.lastTxID+1, now.UnixMilli())
	tx.Timestamp = now
	if tx.Status == "" {
		tx.Status = model.TxCompleted
	}

	next := make([]model.Transaction, 0, len(s.transactions)+1)
	next = append(next, tx)
	next = append(next, s.transactions...)
	if err := s.persist(ctx, repository.KeyTransactions, next); err != nil {
		return model.Transaction{}, err
	}
	s.transactions = next
	s.lastTxID = tx.ID
	return tx, nil
}

// Transactions returns the log, most recent first.
// A positive limit caps the number returned.
func (s *Store) Transactions(limit int) []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.transactions)
	if limit > 0 && limit < n {
		n = limit
	}
	return slices.Clone(s.transactions[:n])
}

// TransactionsFor returns the log entries of one account, most recent first.
func (s *Store) TransactionsFor(accountID int64, limit int) []model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.AccountID != accountID {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// LastAction returns when kind was last executed by the account.
func (s *Store) LastAction(accountID int64, kind model.ActionKind) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.cooldowns[cooldownKey{accountID, kind}]
	return t, ok
}

// SetLastAction records the last execution of kind for the account.
func (s *Store) SetLastAction(ctx context.Context, rec model.CooldownRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[cooldownKey]time.Time, len(s.cooldowns)+1)
	for k, v := range s.cooldowns {
		next[k] = v
	}
	next[cooldownKey{rec.AccountID, rec.Kind}] = rec.LastExecution

	if err := s.persist(ctx, repository.KeyCooldowns, cooldownRecords(next)); err != nil {
		return err
	}
	s.cooldowns = next
	return nil
}

func cooldownRecords(m map[cooldownKey]time.Time) []model.CooldownRecord {
	out := make([]model.CooldownRecord, 0, len(m))
	for k, v := range m {
		out = append(out, model.CooldownRecord{AccountID: k.accountID, Kind: k.kind, LastExecution: v})
	}
	slices.SortFunc(out, func(a, b model.CooldownRecord) int {
		return cmp.Or(cmp.Compare(a.AccountID, b.AccountID), cmp.Compare(a.Kind, b.Kind))
	})
	return out
}

// AppendInteraction adds an engagement log entry at the head of the log.
func (s *Store) AppendInteraction(ctx context.Context, in model.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Timestamp.IsZero() {
		in.Timestamp = s.now()
	}
	next := make([]model.Interaction, 0, len(s.interactions)+1)
	next = append(next, in)
	next = append(next, s.interactions...)
	if err := s.persist(ctx, repository.KeyInteractions, next); err != nil {
		return err
	}
	s.interactions = next
	return nil
}

// Interactions returns the engagement log, most recent first.
func (s *Store) Interactions(limit int) []model.Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.interactions)
	if limit > 0 && limit < n {
		n = limit
	}
	return slices.Clone(s.interactions[:n])
}

// TrimInteractions keeps only the newest keep entries and returns how many were dropped.
func (s *Store) TrimInteractions(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 || len(s.interactions) <= keep {
		return 0, nil
	}
	next := slices.Clone(s.interactions[:keep])
	if err := s.persist(ctx, repository.KeyInteractions, next); err != nil {
		return 0, err
	}
	dropped := len(s.interactions) - keep
	s.interactions = next
	return dropped, nil
}

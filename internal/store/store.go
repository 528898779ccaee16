// Package store owns the hub's mutable state: the account table, economy
// config overrides, transaction log, cooldowns, giveaways and the engagement log.
//
// State is loaded once from a repository.KV. Every mutation persists the
// affected logical key before it becomes visible in memory, so a failed write
// leaves the previous state in place.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/repository"
)

// Store errors.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountExists    = errors.New("account already exists")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrGiveawayNotFound = errors.New("giveaway not found")
)

type cooldownKey struct {
	accountID int64
	kind      model.ActionKind
}

// Store is the single serially-accessed state holder shared by all services.
type Store struct {
	kv       repository.KV
	defaults model.EconomyConfig
	now      func() time.Time

	mu           sync.RWMutex
	accounts     []*model.Account
	index        map[int64]int
	config       model.PartialEconomyConfig
	transactions []model.Transaction
	lastTxID     int64
	cooldowns    map[cooldownKey]time.Time
	giveaways    []model.Giveaway
	entries      []model.GiveawayEntry
	interactions []model.Interaction
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for transaction ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads every logical key from kv. Missing keys start empty.
func Open(ctx context.Context, kv repository.KV, defaults model.EconomyConfig, opts ...Option) (*Store, error) {
	s := &Store{
		kv:        kv,
		defaults:  defaults,
		now:       time.Now,
		index:     make(map[int64]int),
		cooldowns: make(map[cooldownKey]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx, repository.KeyEconomyConfig, &s.config); err != nil {
		return nil, err
	}
	if err := s.load(ctx, repository.KeyAccounts, &s.accounts); err != nil {
		return nil, err
	}
	s.reindex()

	if err := s.load(ctx, repository.KeyTransactions, &s.transactions); err != nil {
		return nil, err
	}
	for _, tx := range s.transactions {
		s.lastTxID = max(s.lastTxID, tx.ID)
	}

	var cooldowns []model.CooldownRecord
	if err := s.load(ctx, repository.KeyCooldowns, &cooldowns); err != nil {
		return nil, err
	}
	for _, c := range cooldowns {
		s.cooldowns[cooldownKey{c.AccountID, c.Kind}] = c.LastExecution
	}

	if err := s.load(ctx, repository.KeyGiveaways, &s.giveaways); err != nil {
		return nil, err
	}
	if err := s.load(ctx, repository.KeyGiveawayEntries, &s.entries); err != nil {
		return nil, err
	}
	if err := s.load(ctx, repository.KeyInteractions, &s.interactions); err != nil {
		return nil, err
	}

	log.Info().
		Int("accounts", len(s.accounts)).
		Int("transactions", len(s.transactions)).
		Int("giveaways", len(s.giveaways)).
		Msg("Store loaded")

	return s, nil
}

func (s *Store) load(ctx context.Context, key string, dst any) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// persist writes v under key. Callers hold s.mu for writing.
func (s *Store) persist(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (s *Store) reindex() {
	s.index = make(map[int64]int, len(s.accounts))
	for i, a := range s.accounts {
		s.index[a.ID] = i
	}
}

// Ping checks the backing store.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

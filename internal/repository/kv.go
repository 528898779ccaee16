// Package repository provides the key-value persistence backends for the hub store.
//
// Every backend stores opaque JSON documents under a small set of logical keys.
// Writes replace the whole document for a key.
package repository

import (
	"context"
	"errors"
)

// Common errors for repository operations.
var (
	ErrKeyNotFound = errors.New("key not found")
)

// Logical keys of the persisted state.
const (
	KeyAccounts        = "accounts"
	KeyGiveaways       = "giveaways"
	KeyGiveawayEntries = "giveaway_entries"
	KeyEconomyConfig   = "economy_config"
	KeyTransactions    = "transactions"
	KeyInteractions    = "interactions"
	KeyCooldowns       = "cooldowns"
)

// Keys lists every logical key in load order.
func Keys() []string {
	return []string{
		KeyEconomyConfig,
		KeyAccounts,
		KeyTransactions,
		KeyCooldowns,
		KeyGiveaways,
		KeyGiveawayEntries,
		KeyInteractions,
	}
}

// KV is a durable key-value document store.
type KV interface {
	// Get returns the stored document or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous document.
	Put(ctx context.Context, key string, value []byte) error
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

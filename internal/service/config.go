package service

import (
	"context"
	"fmt"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

// ConfigStore is the read model for the tunable economy.
// Every read merges stored overrides with defaults.
type ConfigStore struct {
	store *store.Store
}

// NewConfigStore creates a ConfigStore over the store.
func NewConfigStore(st *store.Store) *ConfigStore {
	return &ConfigStore{store: st}
}

// Get returns the effective economy config.
func (c *ConfigStore) Get() model.EconomyConfig {
	return c.store.EconomyConfig()
}

// set validates and persists cfg. Only AdminOverride calls it.
func (c *ConfigStore) set(ctx context.Context, cfg model.EconomyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := c.store.SetEconomyConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to save economy config: %w", err)
	}
	return nil
}

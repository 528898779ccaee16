package game

import (
	"fmt"
	"slices"
	"sync"

	"kingdom-hub/internal/model"
)

// Registry manages game registration and lookup by action kind.
type Registry struct {
	games map[model.ActionKind]Game
	mu    sync.RWMutex
}

// NewRegistry creates a registry with the given games.
func NewRegistry(games ...Game) (*Registry, error) {
	r := &Registry{games: make(map[model.ActionKind]Game)}
	for _, g := range games {
		if err := r.Register(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a game, replacing any game of the same kind.
func (r *Registry) Register(g Game) error {
	if g == nil {
		return fmt.Errorf("cannot register nil game")
	}
	if g.Kind() == "" {
		return fmt.Errorf("game kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.Kind()] = g
	return nil
}

// Get retrieves a game by kind.
func (r *Registry) Get(kind model.ActionKind) (Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[kind]
	return g, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []model.ActionKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]model.ActionKind, 0, len(r.games))
	for k := range r.games {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

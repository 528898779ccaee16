package store

import (
	"context"
	"slices"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/repository"
)

// Giveaways returns every giveaway.
func (s *Store) Giveaways() []model.Giveaway {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.giveaways)
}

// Giveaway returns one giveaway by id.
func (s *Store) Giveaway(id int64) (model.Giveaway, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.giveaways, func(g model.Giveaway) bool { return g.ID == id })
	if i < 0 {
		return model.Giveaway{}, ErrGiveawayNotFound
	}
	return s.giveaways[i], nil
}

// SaveGiveaway inserts g, or replaces the giveaway with the same id.
// A zero id is assigned the next free id.
func (s *Store) SaveGiveaway(ctx context.Context, g model.Giveaway) (model.Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.giveaways)
	if g.ID == 0 {
		for _, existing := range next {
			g.ID = max(g.ID, existing.ID)
		}
		g.ID++
		next = append(next, g)
	} else if i := slices.IndexFunc(next, func(x model.Giveaway) bool { return x.ID == g.ID }); i >= 0 {
		next[i] = g
	} else {
		next = append(next, g)
	}

	if err := s.persist(ctx, repository.KeyGiveaways, next); err != nil {
		return model.Giveaway{}, err
	}
	s.giveaways = next
	return g, nil
}

// DeleteGiveaway removes a giveaway. Its entries are kept.
func (s *Store) DeleteGiveaway(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.giveaways, func(g model.Giveaway) bool { return g.ID == id })
	if i < 0 {
		return ErrGiveawayNotFound
	}
	next := slices.Delete(slices.Clone(s.giveaways), i, i+1)
	if err := s.persist(ctx, repository.KeyGiveaways, next); err != nil {
		return err
	}
	s.giveaways = next
	return nil
}

// GiveawayEntries returns the entries of one giveaway, or all entries when giveawayID is 0.
func (s *Store) GiveawayEntries(giveawayID int64) []model.GiveawayEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.GiveawayEntry
	for _, e := range s.entries {
		if giveawayID == 0 || e.GiveawayID == giveawayID {
			out = append(out, e)
		}
	}
	return out
}

// AddGiveawayEntry appends an entry, assigning its id and timestamp.
func (s *Store) AddGiveawayEntry(ctx context.Context, e model.GiveawayEntry) (model.GiveawayEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e.ID = now.UnixMilli()
	for _, existing := range s.entries {
		e.ID = max(e.ID, existing.ID+1)
	}
	e.Timestamp = now

	next := append(slices.Clip(s.entries), e)
	if err := s.persist(ctx, repository.KeyGiveawayEntries, next); err != nil {
		return model.GiveawayEntry{}, err
	}
	s.entries = next
	return e, nil
}

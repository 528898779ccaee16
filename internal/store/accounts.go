package store

import (
	"context"
	"slices"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/repository"
)

// Account returns a copy of the account with the given id.
func (s *Store) Account(id int64) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return s.accounts[i].Clone(), nil
}

// Accounts returns copies of all accounts in insertion order.
func (s *Store) Accounts() []*model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Account, len(s.accounts))
	for i, a := range s.accounts {
		out[i] = a.Clone()
	}
	return out
}

// AccountIDs returns every account id in insertion order.
func (s *Store) AccountIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, len(s.accounts))
	for i, a := range s.accounts {
		ids[i] = a.ID
	}
	return ids
}

// AccountByUsername finds an account by exact username.
func (s *Store) AccountByUsername(username string) (*model.Account, error) {
	return s.find(func(a *model.Account) bool { return a.Username == username })
}

// AccountByReferralCode finds an account by its referral code.
func (s *Store) AccountByReferralCode(code string) (*model.Account, error) {
	return s.find(func(a *model.Account) bool { return a.ReferralCode == code })
}

func (s *Store) find(match func(*model.Account) bool) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if match(a) {
			return a.Clone(), nil
		}
	}
	return nil, ErrAccountNotFound
}

// InsertAccount appends a new account. Ids and usernames must be unique.
func (s *Store) InsertAccount(ctx context.Context, acc *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[acc.ID]; ok {
		return ErrAccountExists
	}
	if usernameTaken(s.accounts, acc.Username) {
		return ErrUsernameTaken
	}

	next := append(slices.Clip(s.accounts), acc.Clone())
	if err := s.persist(ctx, repository.KeyAccounts, next); err != nil {
		return err
	}
	s.accounts = next
	s.index[acc.ID] = len(next) - 1
	return nil
}

// UpdateAccount applies fn to a copy of the account and commits the result.
// If fn returns an error nothing is written.
func (s *Store) UpdateAccount(ctx context.Context, id int64, fn func(*model.Account) error) (*model.Account, error) {
	updated, err := s.UpdateAccounts(ctx, []int64{id}, fn)
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// UpdateAccounts applies fn to a copy of each listed account and commits all
// of them with a single write. Any error from fn aborts the whole batch.
func (s *Store) UpdateAccounts(ctx context.Context, ids []int64, fn func(*model.Account) error) ([]*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.accounts)
	updated := make([]*model.Account, 0, len(ids))
	for _, id := range ids {
		i, ok := s.index[id]
		if !ok {
			return nil, ErrAccountNotFound
		}
		c := next[i].Clone()
		if err := fn(c); err != nil {
			return nil, err
		}
		if c.ID != id {
			return nil, ErrAccountExists
		}
		if c.Username != next[i].Username && usernameTaken(next, c.Username) {
			return nil, ErrUsernameTaken
		}
		next[i] = c
		updated = append(updated, c.Clone())
	}

	if err := s.persist(ctx, repository.KeyAccounts, next); err != nil {
		return nil, err
	}
	s.accounts = next
	return updated, nil
}

// DeleteAccount removes an account permanently.
// Transactions and cooldown records that reference it are kept.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrAccountNotFound
	}
	next := slices.Delete(slices.Clone(s.accounts), i, i+1)
	if err := s.persist(ctx, repository.KeyAccounts, next); err != nil {
		return err
	}
	s.accounts = next
	s.reindex()
	return nil
}

func usernameTaken(accounts []*model.Account, username string) bool {
	return slices.ContainsFunc(accounts, func(a *model.Account) bool { return a.Username == username })
}

// Package lock provides per-account locking so that ledger commits for the
// same account serialize while different accounts proceed in parallel.
package lock

import (
	"slices"
	"sync"
)

// accountMutex wraps a mutex with reference counting.
type accountMutex struct {
	mu       sync.Mutex
	refCount int
}

// AccountLock hands out one mutex per account id.
type AccountLock struct {
	locks sync.Map // map[int64]*accountMutex
	pool  sync.Pool
}

// NewAccountLock creates a new AccountLock instance.
func NewAccountLock() *AccountLock {
	return &AccountLock{
		pool: sync.Pool{
			New: func() any {
				return &accountMutex{}
			},
		},
	}
}

func (al *AccountLock) get(accountID int64) *accountMutex {
	if v, ok := al.locks.Load(accountID); ok {
		return v.(*accountMutex)
	}

	m := al.pool.Get().(*accountMutex)
	m.refCount = 0

	actual, loaded := al.locks.LoadOrStore(accountID, m)
	if loaded {
		al.pool.Put(m)
	}
	return actual.(*accountMutex)
}

// Lock acquires the lock for an account.
func (al *AccountLock) Lock(accountID int64) {
	m := al.get(accountID)
	m.mu.Lock()
	m.refCount++
}

// Unlock releases the lock for an account.
func (al *AccountLock) Unlock(accountID int64) {
	if v, ok := al.locks.Load(accountID); ok {
		m := v.(*accountMutex)
		m.refCount--
		m.mu.Unlock()
	}
}

// WithLock executes fn while holding the account's lock.
func (al *AccountLock) WithLock(accountID int64, fn func() error) error {
	al.Lock(accountID)
	defer al.Unlock(accountID)
	return fn()
}

// WithLocks executes fn while holding the locks of every given account.
// Locks are taken in ascending id order so concurrent bulk callers cannot deadlock.
func (al *AccountLock) WithLocks(accountIDs []int64, fn func() error) error {
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		al.Lock(id)
	}
	defer func() {
		for i := len(ids) - 1; i >= 0; i-- {
			al.Unlock(ids[i])
		}
	}()
	return fn()
}

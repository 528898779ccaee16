package lock

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// Concurrent read-modify-write under Lock ends in the same state as running
// the deltas one after another.
func TestConcurrentCommitsSerializeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(1000, 100000).Draw(t, "initial")
		deltas := rapid.SliceOfN(rapid.Int64Range(-500, 500), 2, 20).Draw(t, "deltas")
		accountID := rapid.Int64Range(1, 1000000).Draw(t, "accountID")

		expected := initial
		for _, d := range deltas {
			expected += d
		}

		al := NewAccountLock()
		points := initial

		var wg sync.WaitGroup
		wg.Add(len(deltas))
		for _, d := range deltas {
			go func(delta int64) {
				defer wg.Done()
				al.Lock(accountID)
				defer al.Unlock(accountID)
				points += delta
			}(d)
		}
		wg.Wait()

		if points != expected {
			t.Fatalf("points mismatch: expected %d, got %d", expected, points)
		}
	})
}

func TestWithLockSerializesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ops := rapid.IntRange(5, 30).Draw(t, "ops")
		amount := rapid.Int64Range(1, 100).Draw(t, "amount")
		accountID := rapid.Int64Range(1, 1000000).Draw(t, "accountID")

		al := NewAccountLock()
		var points int64

		var wg sync.WaitGroup
		wg.Add(ops)
		for i := 0; i < ops; i++ {
			go func() {
				defer wg.Done()
				_ = al.WithLock(accountID, func() error {
					points += amount
					return nil
				})
			}()
		}
		wg.Wait()

		if points != int64(ops)*amount {
			t.Fatalf("points mismatch: expected %d, got %d", int64(ops)*amount, points)
		}
	})
}

// Bulk holders and single-account holders never deadlock and never lose an update.
func TestWithLocksMixedWithSingleLocksProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		accounts := rapid.IntRange(2, 8).Draw(t, "accounts")
		bulkOps := rapid.IntRange(1, 5).Draw(t, "bulkOps")
		singleOps := rapid.IntRange(1, 10).Draw(t, "singleOps")

		ids := make([]int64, accounts)
		points := make(map[int64]*int64, accounts)
		for i := range ids {
			// Deliberately unsorted to exercise ordering.
			ids[i] = int64(accounts - i)
			var p int64
			points[ids[i]] = &p
		}

		al := NewAccountLock()
		var wg sync.WaitGroup
		for i := 0; i < bulkOps; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = al.WithLocks(ids, func() error {
					for _, id := range ids {
						*points[id]++
					}
					return nil
				})
			}()
		}
		for _, id := range ids {
			for j := 0; j < singleOps; j++ {
				wg.Add(1)
				go func(id int64) {
					defer wg.Done()
					_ = al.WithLock(id, func() error {
						*points[id]++
						return nil
					})
				}(id)
			}
		}
		wg.Wait()

		for _, id := range ids {
			if got := *points[id]; got != int64(bulkOps+singleOps) {
				t.Fatalf("account %d: expected %d, got %d", id, bulkOps+singleOps, got)
			}
		}
	})
}

func TestIndependentAccountsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		accounts := rapid.IntRange(2, 10).Draw(t, "accounts")
		opsPer := rapid.IntRange(5, 20).Draw(t, "opsPer")

		al := NewAccountLock()
		points := make([]int64, accounts+1)

		var wg sync.WaitGroup
		wg.Add(accounts * opsPer)
		for id := 1; id <= accounts; id++ {
			for j := 0; j < opsPer; j++ {
				go func(id int) {
					defer wg.Done()
					al.Lock(int64(id))
					defer al.Unlock(int64(id))
					points[id] += 10
				}(id)
			}
		}
		wg.Wait()

		for id := 1; id <= accounts; id++ {
			if points[id] != int64(opsPer)*10 {
				t.Fatalf("account %d: expected %d, got %d", id, opsPer*10, points[id])
			}
		}
	})
}

func TestWithLockReturnsErrorAndReleases(t *testing.T) {
	al := NewAccountLock()
	boom := errors.New("boom")

	assert.ErrorIs(t, al.WithLock(7, func() error { return boom }), boom)
	assert.ErrorIs(t, al.WithLocks([]int64{9, 7, 7}, func() error { return boom }), boom)

	done := make(chan struct{})
	go func() {
		al.Lock(7)
		al.Unlock(7)
		close(done)
	}()
	<-done
}

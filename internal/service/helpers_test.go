package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/game/coinflip"
	"kingdom-hub/internal/game/luckydraw"
	"kingdom-hub/internal/game/miner"
	"kingdom-hub/internal/game/spin"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/pkg/lock"
	"kingdom-hub/internal/repository"
	"kingdom-hub/internal/shop"
	"kingdom-hub/internal/store"
)

const testAdminID = 1

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// scriptedRand replays fixed draws. When a queue runs dry it returns the
// highest value, which loses every Chance check.
type scriptedRand struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.999
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return n - 1
	}
	i := r.ints[0]
	r.ints = r.ints[1:]
	return min(i, n-1)
}

func (r *scriptedRand) queue(floats []float64, ints ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.floats = append(r.floats, floats...)
	r.ints = append(r.ints, ints...)
}

type testEnv struct {
	ctx       context.Context
	clock     *testClock
	store     *store.Store
	txlog     *TransactionLog
	config    *ConfigStore
	ledger    *Ledger
	gate      *CooldownGate
	accounts  *AccountService
	shop      *ShopService
	admin     *AdminService
	giveaways *GiveawayService
	rewards   *RewardService
	rng       *scriptedRand
	energy    *miner.EnergyMeter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	st, err := store.Open(ctx, repository.NewMemoryKV(), model.DefaultEconomyConfig(), store.WithClock(clock.Now))
	require.NoError(t, err)

	txlog := NewTransactionLog(st)
	cfg := NewConfigStore(st)
	ledger := NewLedger(st, lock.NewAccountLock(), cfg, txlog)
	gate := NewCooldownGate(st, cfg)
	catalog := shop.DefaultCatalog()

	registry, err := game.NewRegistry(spin.New(), coinflip.New(), luckydraw.New(), miner.New())
	require.NoError(t, err)

	rng := &scriptedRand{}
	energy := miner.NewEnergyMeter(miner.DefaultEnergyConfig())

	e := &testEnv{
		ctx:       ctx,
		clock:     clock,
		store:     st,
		txlog:     txlog,
		config:    cfg,
		ledger:    ledger,
		gate:      gate,
		accounts:  NewAccountService(ledger, st, 100, clock.Now),
		shop:      NewShopService(ledger, txlog, catalog, clock.Now),
		admin:     NewAdminService(ledger, txlog, cfg, st, testAdminID),
		giveaways: NewGiveawayService(ledger, txlog, st),
		rng:       rng,
		energy:    energy,
	}
	e.rewards = NewRewardService(RewardDeps{
		Ledger:   ledger,
		TxLog:    txlog,
		Gate:     gate,
		Config:   cfg,
		Store:    st,
		Catalog:  catalog,
		Registry: registry,
		Energy:   energy,
		Rand:     rng,
		Delays:   map[model.ActionKind]time.Duration{},
		Now:      clock.Now,
	})

	_, err = e.accounts.EnsureAdmin(ctx, AdminSeed{ID: testAdminID, Username: "AlgoKingX", Points: 999999, ReferralCode: "KING"})
	require.NoError(t, err)
	return e
}

// register creates an account with the 100 point welcome bonus.
func (e *testEnv) register(t *testing.T, id int64, name string) *model.Account {
	t.Helper()
	acc, err := e.accounts.Register(e.ctx, id, name, "")
	require.NoError(t, err)
	return acc
}

func (e *testEnv) setPoints(t *testing.T, id, points int64) {
	t.Helper()
	_, err := e.ledger.ApplyFull(e.ctx, id, func(a *model.Account) error {
		a.Points = points
		return nil
	})
	require.NoError(t, err)
}

func (e *testEnv) account(t *testing.T, id int64) *model.Account {
	t.Helper()
	acc, err := e.ledger.Get(id)
	require.NoError(t, err)
	return acc
}

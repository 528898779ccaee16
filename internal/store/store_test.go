package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/repository"
)

// failingKV wraps a KV and fails writes while broken is set.
type failingKV struct {
	repository.KV
	broken bool
}

var errBroken = errors.New("disk on fire")

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	if f.broken {
		return errBroken
	}
	return f.KV.Put(ctx, key, value)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func openTestStore(t *testing.T, kv repository.KV, now time.Time) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, model.DefaultEconomyConfig(), WithClock(fixedClock(now)))
	require.NoError(t, err)
	return s
}

func sampleAccount(id int64, name string) *model.Account {
	return &model.Account{
		ID:           id,
		Username:     name,
		Points:       100,
		Level:        1,
		LoginStreak:  1,
		ReferralCode: "REF" + name,
		Inventory:    []model.InventoryItem{},
		JoinedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestInsertAndUpdateAccount(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, repository.NewMemoryKV(), time.Now())

	require.NoError(t, s.InsertAccount(ctx, sampleAccount(10, "alice")))
	assert.ErrorIs(t, s.InsertAccount(ctx, sampleAccount(10, "bob")), ErrAccountExists)
	assert.ErrorIs(t, s.InsertAccount(ctx, sampleAccount(11, "alice")), ErrUsernameTaken)

	updated, err := s.UpdateAccount(ctx, 10, func(a *model.Account) error {
		a.Points += 5
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(105), updated.Points)

	// Returned snapshots are copies.
	updated.Points = 0
	got, err := s.Account(10)
	require.NoError(t, err)
	assert.Equal(t, int64(105), got.Points)

	_, err = s.UpdateAccount(ctx, 99, func(*model.Account) error { return nil })
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUpdateAccountRejectsRenameCollision(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, repository.NewMemoryKV(), time.Now())
	require.NoError(t, s.InsertAccount(ctx, sampleAccount(1, "alice")))
	require.NoError(t, s.InsertAccount(ctx, sampleAccount(2, "bob")))

	_, err := s.UpdateAccount(ctx, 2, func(a *model.Account) error {
		a.Username = "alice"
		return nil
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMutatorErrorCommitsNothing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, repository.NewMemoryKV(), time.Now())
	require.NoError(t, s.InsertAccount(ctx, sampleAccount(1, "alice")))
	require.NoError(t, s.InsertAccount(ctx, sampleAccount(2, "bob")))

	stop := errors.New("stop")
	_, err := s.UpdateAccounts(ctx, []int64{1, 2}, func(a *model.Account) error {
		if a.ID == 2 {
			return stop
		}
		a.Points = 1
		return nil
	})
	assert.ErrorIs(t, err, stop)

	a, _ := s.Account(1)
	assert.Equal(t, int64(100), a.Points)
}

func TestFailedPersistLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: repository.NewMemoryKV()}
	s := openTestStore(t, kv, time.Now())
	require.NoError(t, s.InsertAccount(ctx, sampleAccount(1, "alice")))

	kv.broken = true

	_, err := s.UpdateAccount(ctx, 1, func(a *model.Account) error {
		a.Points = 0
		return nil
	})
	assert.ErrorIs(t, err, errBroken)
	a, _ := s.Account(1)
	assert.Equal(t, int64(100), a.Points)

	_, err = s.PrependTransaction(ctx, model.Transaction{AccountID: 1, Kind: model.TxGameWin, Amount: 5})
	assert.ErrorIs(t, err, errBroken)
	assert.Empty(t, s.Transactions(0))

	assert.ErrorIs(t, s.DeleteAccount(ctx, 1), errBroken)
	_, err = s.Account(1)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.SetLastAction(ctx, model.CooldownRecord{AccountID: 1, Kind: model.ActionSpin, LastExecution: time.Now()}), errBroken)
	_, ok := s.LastAction(1, model.ActionSpin)
	assert.False(t, ok)
}

func TestTransactionsPrependWithIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, repository.NewMemoryKV(), now)

	a, err := s.PrependTransaction(ctx, model.Transaction{AccountID: 1, Kind: model.TxGameWin, Amount: 10, Description: "a"})
	require.NoError(t, err)
	b, err := s.PrependTransaction(ctx, model.Transaction{AccountID: 1, Kind: model.TxGameLoss, Amount: -10, Description: "b"})
	require.NoError(t, err)

	assert.Equal(t, now.UnixMilli(), a.ID)
	assert.Equal(t, a.ID+1, b.ID)
	assert.Equal(t, model.TxCompleted, b.Status)

	log := s.Transactions(0)
	require.Len(t, log, 2)
	assert.Equal(t, "b", log[0].Description)
	assert.Equal(t, "a", log[1].Description)

	assert.Len(t, s.Transactions(1), 1)
	assert.Len(t, s.TransactionsFor(1, 0), 2)
	assert.Empty(t, s.TransactionsFor(2, 0))
}

func TestEconomyConfigMergesDefaults(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, repository.KeyEconomyConfig, []byte(`{"spinWinRate":75}`)))

	s := openTestStore(t, kv, time.Now())
	cfg := s.EconomyConfig()
	assert.Equal(t, 75.0, cfg.SpinWinRate)
	assert.Equal(t, 50.0, cfg.CoinFlipWinRate)
	assert.Equal(t, 1.0, cfg.XPMultiplier)

	cfg.XPMultiplier = 3
	require.NoError(t, s.SetEconomyConfig(ctx, cfg))
	assert.Equal(t, 3.0, s.EconomyConfig().XPMultiplier)
}

func TestTrimInteractions(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, repository.NewMemoryKV(), time.Now())
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AppendInteraction(ctx, model.Interaction{AccountID: int64(i), Kind: "spin"}))
	}

	dropped, err := s.TrimInteractions(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)

	kept := s.Interactions(0)
	require.Len(t, kept, 2)
	assert.Equal(t, int64(4), kept[0].AccountID)
	assert.Equal(t, int64(3), kept[1].AccountID)
}

func TestGiveawaysAndEntries(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, repository.NewMemoryKV(), time.Now())

	g, err := s.SaveGiveaway(ctx, model.Giveaway{Title: "Crown", Active: true, MaxEntries: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), g.ID)

	g.Title = "Crown v2"
	_, err = s.SaveGiveaway(ctx, g)
	require.NoError(t, err)
	got, err := s.Giveaway(1)
	require.NoError(t, err)
	assert.Equal(t, "Crown v2", got.Title)

	e1, err := s.AddGiveawayEntry(ctx, model.GiveawayEntry{AccountID: 5, GiveawayID: 1, ProofLink: "x"})
	require.NoError(t, err)
	e2, err := s.AddGiveawayEntry(ctx, model.GiveawayEntry{AccountID: 6, GiveawayID: 1, ProofLink: "y"})
	require.NoError(t, err)
	assert.Greater(t, e2.ID, e1.ID)
	assert.Len(t, s.GiveawayEntries(1), 2)

	require.NoError(t, s.DeleteGiveaway(ctx, 1))
	assert.ErrorIs(t, s.DeleteGiveaway(ctx, 1), ErrGiveawayNotFound)
	assert.Len(t, s.GiveawayEntries(0), 2)
}

// Reopening a store on the same backend reproduces every field,
// including absent optionals.
func TestRoundTripThroughBackend(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	s := openTestStore(t, kv, now)

	until := now.Add(time.Hour)
	full := sampleAccount(1, "alice")
	full.LastLoginDate = model.StringPtr("2026-03-03")
	full.Wallet = model.StringPtr("0x0123456789abcdef0123456789abcdef")
	full.ReferredBy = model.StringPtr("KING")
	full.Inventory = []model.InventoryItem{
		{ItemID: "miner_mk2", Quantity: 1},
		{ItemID: "xp_boost_2x", Quantity: 2, ActiveUntil: &until},
	}
	full.BonusEntries = 1
	bare := sampleAccount(2, "bob")
	require.NoError(t, s.InsertAccount(ctx, full))
	require.NoError(t, s.InsertAccount(ctx, bare))

	cfg := model.DefaultEconomyConfig()
	cfg.SpinWinRate = 12.5
	require.NoError(t, s.SetEconomyConfig(ctx, cfg))
	_, err := s.PrependTransaction(ctx, model.Transaction{AccountID: 1, Username: "alice", Kind: model.TxDailyLogin, Amount: 40, Description: "Daily Login Bonus"})
	require.NoError(t, err)
	require.NoError(t, s.SetLastAction(ctx, model.CooldownRecord{AccountID: 1, Kind: model.ActionSpin, LastExecution: now}))
	require.NoError(t, s.AppendInteraction(ctx, model.Interaction{AccountID: 1, Username: "alice", Kind: "spin", Reward: model.StringPtr("50 pts"), Timestamp: now}))

	reopened := openTestStore(t, kv, now)

	assert.Equal(t, s.Accounts(), reopened.Accounts())
	assert.Equal(t, s.EconomyConfig(), reopened.EconomyConfig())
	assert.Equal(t, s.Transactions(0), reopened.Transactions(0))
	assert.Equal(t, s.Interactions(0), reopened.Interactions(0))

	last, ok := reopened.LastAction(1, model.ActionSpin)
	require.True(t, ok)
	assert.True(t, last.Equal(now))

	b, err := reopened.Account(2)
	require.NoError(t, err)
	assert.Nil(t, b.Wallet)
	assert.Nil(t, b.LastLoginDate)
	assert.Nil(t, b.ReferredBy)

	// Ids keep increasing across restarts.
	next, err := reopened.PrependTransaction(ctx, model.Transaction{AccountID: 1, Kind: model.TxGameWin})
	require.NoError(t, err)
	assert.Greater(t, next.ID, s.Transactions(0)[0].ID)
}

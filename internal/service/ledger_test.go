package service

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"kingdom-hub/internal/model"
)

func TestApplyDeltaRejectsOverdraft(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")

	_, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{Points: -101})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(100), e.account(t, 10).Points)

	c, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{Points: -100})
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Account.Points)
}

func TestApplyDeltaUnknownAccount(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.ledger.ApplyDelta(e.ctx, 404, model.Delta{Points: 1})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestApplyDeltaRejectsNegativeCounters(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")

	for _, d := range []model.Delta{{XP: -1}, {Spins: -1}, {Winnings: -1}} {
		_, err := e.ledger.ApplyDelta(e.ctx, 10, d)
		assert.ErrorIs(t, err, ErrInvariantViolation, "%+v", d)
	}
}

func TestApplyFullRejectsInvariantBreaks(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")

	cases := map[string]func(*model.Account){
		"negative points":   func(a *model.Account) { a.Points = -1 },
		"stale level":       func(a *model.Account) { a.XP = 500 },
		"negative xp":       func(a *model.Account) { a.XP = -1 },
		"empty username":    func(a *model.Account) { a.Username = "" },
		"id change":         func(a *model.Account) { a.ID = 11 },
		"spins decreased":   func(a *model.Account) { a.TotalSpins = -1 },
		"zero quantity":     func(a *model.Account) { a.Inventory = []model.InventoryItem{{ItemID: "crown_badge"}} },
		"negative streak":   func(a *model.Account) { a.LoginStreak = -2 },
		"negative bonus":    func(a *model.Account) { a.BonusEntries = -1 },
		"winnings decrease": func(a *model.Account) { a.TotalWinnings = -5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.ledger.ApplyFull(e.ctx, 10, func(a *model.Account) error {
				mutate(a)
				return nil
			})
			assert.ErrorIs(t, err, ErrInvariantViolation)
			assert.Equal(t, int64(100), e.account(t, 10).Points)
		})
	}
}

func TestApplyFullMutatorErrorCommitsNothing(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")
	boom := errors.New("boom")

	_, err := e.ledger.ApplyFull(e.ctx, 10, func(a *model.Account) error {
		a.Points = 5
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(100), e.account(t, 10).Points)
}

func TestLevelBonusPerLevelCrossed(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")

	err := e.ledger.WithAccount(10, func(s *Session) error {
		c, err := s.ApplyDelta(e.ctx, model.Delta{XP: 300})
		if err != nil {
			return err
		}
		assert.Equal(t, []int{2, 3}, c.XP.LevelsGained())
		_, err = s.IssueLevelBonuses(e.ctx, c)
		return err
	})
	require.NoError(t, err)

	acc := e.account(t, 10)
	assert.Equal(t, 3, acc.Level)
	assert.Equal(t, int64(100+100+150), acc.Points)

	txs := e.txlog.ListFor(10, 0)
	require.Len(t, txs, 2)
	assert.Equal(t, "Level Up Bonus (Lvl 3)", txs[0].Description)
	assert.Equal(t, int64(150), txs[0].Amount)
	assert.Equal(t, "Level Up Bonus (Lvl 2)", txs[1].Description)
	assert.Equal(t, int64(100), txs[1].Amount)
	for _, tx := range txs {
		assert.Equal(t, model.TxManualAdjustment, tx.Kind)
	}
}

func TestXPMultiplierAppliesToGain(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")
	cfg := model.DefaultEconomyConfig()
	cfg.XPMultiplier = 1.5
	require.NoError(t, e.admin.UpdateConfig(e.ctx, cfg))

	c, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{XP: 15})
	require.NoError(t, err)
	assert.Equal(t, int64(22), c.Account.XP)
}

func TestCreditAllSingleWrite(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")
	e.register(t, 11, "bob")

	updated, err := e.ledger.CreditAll(e.ctx, []int64{11, 10}, 5)
	require.NoError(t, err)
	assert.Len(t, updated, 2)
	assert.Equal(t, int64(105), e.account(t, 10).Points)
	assert.Equal(t, int64(105), e.account(t, 11).Points)

	_, err = e.ledger.CreditAll(e.ctx, []int64{10}, -1)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestApplyDeltaRejectsValuesPastMax(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")
	e.setPoints(t, 10, model.MaxAmount-10)

	_, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{Points: 50})
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, model.MaxAmount-10, e.account(t, 10).Points)

	_, err = e.ledger.ApplyFull(e.ctx, 10, func(a *model.Account) error {
		a.XP = model.MaxAmount - 2
		a.Level = LevelFor(a.XP)
		return nil
	})
	require.NoError(t, err)

	_, err = e.ledger.ApplyDelta(e.ctx, 10, model.Delta{XP: 10})
	assert.ErrorIs(t, err, ErrInvariantViolation)
	_, err = e.ledger.ApplyDelta(e.ctx, 10, model.Delta{XP: math.MaxInt64})
	assert.ErrorIs(t, err, ErrInvariantViolation)

	acc := e.account(t, 10)
	assert.Equal(t, model.MaxAmount-2, acc.XP)
	assert.Equal(t, LevelFor(acc.XP), acc.Level)

	c, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{Points: 10, XP: 2})
	require.NoError(t, err)
	assert.Equal(t, model.MaxAmount, c.Account.Points)
	assert.Equal(t, model.MaxAmount, c.Account.XP)
}

func TestCreditAllRejectsValuesPastMax(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, 10, "alice")
	e.register(t, 11, "bob")
	e.setPoints(t, 11, model.MaxAmount-10)

	_, err := e.ledger.CreditAll(e.ctx, []int64{10, 11}, 50)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, int64(100), e.account(t, 10).Points)
	assert.Equal(t, model.MaxAmount-10, e.account(t, 11).Points)
}

// Property: no sequence of deltas can leave points negative, and every
// rejected delta is an insufficient balance error.
func TestPointsNeverNegativeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := newTestEnv(t)
		e.register(t, 10, "alice")

		expected := int64(100)
		deltas := rapid.SliceOfN(rapid.Int64Range(-300, 300), 1, 40).Draw(rt, "deltas")
		for _, d := range deltas {
			c, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{Points: d})
			if expected+d < 0 {
				if !errors.Is(err, ErrInsufficientBalance) {
					rt.Fatalf("delta %d on %d: want insufficient balance, got %v", d, expected, err)
				}
				continue
			}
			if err != nil {
				rt.Fatalf("delta %d on %d: %v", d, expected, err)
			}
			expected += d
			if c.Account.Points != expected || c.Account.Points < 0 {
				rt.Fatalf("points %d, want %d", c.Account.Points, expected)
			}
		}
	})
}

// Property: after any XP gain the cached level matches the XP.
func TestLevelMatchesXPAfterCommitProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := newTestEnv(t)
		e.register(t, 10, "alice")

		for _, xp := range rapid.SliceOfN(rapid.Int64Range(0, 2000), 1, 20).Draw(rt, "xp") {
			c, err := e.ledger.ApplyDelta(e.ctx, 10, model.Delta{XP: xp})
			if err != nil {
				rt.Fatal(err)
			}
			if c.Account.Level != LevelFor(c.Account.XP) {
				rt.Fatalf("level %d for xp %d", c.Account.Level, c.Account.XP)
			}
		}
	})
}

package spin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
)

// fixedRand returns scripted values.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int     { return r.n }

func TestSpinTryAgain(t *testing.T) {
	cfg := model.DefaultEconomyConfig()
	out := New().Resolve(fixedRand{f: 0.99}, cfg, game.Request{})

	assert.False(t, out.Commit)
	assert.False(t, out.Win)
	assert.Zero(t, out.Points)
	assert.Zero(t, out.XP)
	assert.Equal(t, TryAgain, out.Label)
}

func TestSpinWin(t *testing.T) {
	cfg := model.DefaultEconomyConfig()
	// Paying slices are indexes 0,1,2,3,4,6,7; the sixth is index 6 (value 5).
	out := New().Resolve(fixedRand{f: 0.1, n: 5}, cfg, game.Request{})

	assert.True(t, out.Commit)
	assert.True(t, out.CountsAsSpin)
	assert.Equal(t, int64(5), out.Points)
	assert.Equal(t, int64(XPReward), out.XP)
	assert.Equal(t, "5 pts", out.Label)
}

func TestSpinRejectsBet(t *testing.T) {
	assert.ErrorIs(t, New().ValidateBet(game.Request{Bet: 10}), game.ErrInvalidBet)
	assert.NoError(t, New().ValidateBet(game.Request{}))
}

func TestSpinOutcomeAlwaysOnWheelProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := model.DefaultEconomyConfig()
		cfg.SpinWinRate = rapid.Float64Range(0, 100).Draw(t, "rate")
		rng := game.NewRand(rapid.Uint64().Draw(t, "seed"))

		out := New().Resolve(rng, cfg, game.Request{})
		if out.Points < 0 {
			t.Fatalf("spin must never debit, got %d", out.Points)
		}
		if out.Commit != (out.Points > 0) {
			t.Fatalf("commit %v does not match points %d", out.Commit, out.Points)
		}
		found := false
		for _, v := range Wheel {
			if v == out.Points {
				found = true
			}
		}
		if !found {
			t.Fatalf("value %d is not on the wheel", out.Points)
		}
	})
}

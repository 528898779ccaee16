package luckydraw

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
)

type indexRand int

func (r indexRand) Float64() float64 { return 0 }
func (r indexRand) IntN(int) int     { return int(r) }

func TestResolveEveryPrize(t *testing.T) {
	g := New()
	for i, p := range Prizes {
		out := g.Resolve(indexRand(i), model.DefaultEconomyConfig(), game.Request{})
		assert.True(t, out.Commit)
		assert.Zero(t, out.XP)
		assert.Equal(t, p.Points, out.Points)
		assert.Equal(t, p.Label, out.Label)
		if p.Entry {
			assert.Equal(t, 1, out.BonusEntries)
		} else {
			assert.Zero(t, out.BonusEntries)
		}
	}
}

func TestValidateBet(t *testing.T) {
	assert.NoError(t, New().ValidateBet(game.Request{}))
	assert.ErrorIs(t, New().ValidateBet(game.Request{Bet: 1}), game.ErrInvalidBet)
}

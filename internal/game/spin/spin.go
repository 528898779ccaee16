// Package spin implements the daily wheel of fortune.
package spin

import (
	"fmt"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
)

// XPReward is granted for every paying spin.
const XPReward = 15

// Wheel lists the slice values in wheel order. 0 is "Try Again".
var Wheel = []int64{10, 25, 50, 15, 100, 0, 5, 500}

// TryAgain is the label of the non-paying slice.
const TryAgain = "Try Again"

// Game is the spin wheel. It takes no bet.
type Game struct{}

// New creates the spin game.
func New() *Game { return &Game{} }

func (g *Game) Name() string           { return "Spin the Wheel" }
func (g *Game) Kind() model.ActionKind { return model.ActionSpin }
func (g *Game) Description() string    { return "Free spin for up to 500 points" }

// ValidateBet rejects any stake; the wheel is free.
func (g *Game) ValidateBet(req game.Request) error {
	if req.Bet != 0 {
		return fmt.Errorf("%w: spin takes no bet", game.ErrInvalidBet)
	}
	return nil
}

// Resolve lands on a paying slice with probability cfg.SpinWinRate percent,
// picking uniformly among paying slices. Otherwise it lands on Try Again.
func (g *Game) Resolve(rng game.Rand, cfg model.EconomyConfig, _ game.Request) game.Outcome {
	if !game.Chance(rng, cfg.SpinWinRate) {
		return game.Outcome{
			Label:   TryAgain,
			Details: map[string]any{"slice": sliceIndex(0)},
		}
	}

	paying := payingSlices()
	idx := paying[rng.IntN(len(paying))]
	value := Wheel[idx]
	return game.Outcome{
		Points:       value,
		XP:           XPReward,
		Win:          true,
		Commit:       true,
		CountsAsSpin: true,
		Label:        fmt.Sprintf("%d pts", value),
		Details:      map[string]any{"slice": idx},
	}
}

func payingSlices() []int {
	out := make([]int, 0, len(Wheel))
	for i, v := range Wheel {
		if v > 0 {
			out = append(out, i)
		}
	}
	return out
}

func sliceIndex(value int64) int {
	for i, v := range Wheel {
		if v == value {
			return i
		}
	}
	return -1
}

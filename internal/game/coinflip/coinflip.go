// Package coinflip implements the heads-or-tails wager.
package coinflip

import (
	"fmt"
	"strings"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
)

// Bet limits.
const (
	MinBet  = 10
	MaxBet  = 100
	BetStep = 10
)

// XPReward is granted for every flip, win or lose.
const XPReward = 5

// Sides of the coin.
const (
	Heads = "heads"
	Tails = "tails"
)

// Game is the coin flip.
type Game struct{}

// New creates the coin flip game.
func New() *Game { return &Game{} }

func (g *Game) Name() string           { return "Coin Flip" }
func (g *Game) Kind() model.ActionKind { return model.ActionCoinFlip }
func (g *Game) Description() string    { return "Double your bet on the right side" }

// ValidateBet accepts bets from MinBet to MaxBet in BetStep increments and a side.
func (g *Game) ValidateBet(req game.Request) error {
	if req.Bet < MinBet || req.Bet > MaxBet || req.Bet%BetStep != 0 {
		return fmt.Errorf("%w: bet must be %d..%d in steps of %d", game.ErrInvalidBet, MinBet, MaxBet, BetStep)
	}
	if _, err := ParseSide(req.Choice); err != nil {
		return err
	}
	return nil
}

// ParseSide normalizes a side name. An empty choice means heads.
func ParseSide(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "h", Heads:
		return Heads, nil
	case "t", Tails:
		return Tails, nil
	}
	return "", fmt.Errorf("%w: unknown side %q", game.ErrInvalidBet, s)
}

// Resolve wins with probability cfg.CoinFlipWinRate percent.
// A win pays twice the bet on top of the untouched stake; a loss forfeits the bet.
func (g *Game) Resolve(rng game.Rand, cfg model.EconomyConfig, req game.Request) game.Outcome {
	side, _ := ParseSide(req.Choice)
	won := game.Chance(rng, cfg.CoinFlipWinRate)

	landed := side
	if !won {
		landed = opposite(side)
	}

	out := game.Outcome{
		XP:      XPReward,
		Win:     won,
		Commit:  true,
		Details: map[string]any{"choice": side, "landed": landed, "bet": req.Bet},
	}
	if won {
		out.Points = 2 * req.Bet
		out.CountsWinnings = true
		out.Label = fmt.Sprintf("Won %d pts", out.Points)
	} else {
		out.Points = -req.Bet
		out.Label = fmt.Sprintf("Lost %d pts", req.Bet)
	}
	return out
}

func opposite(side string) string {
	if side == Heads {
		return Tails
	}
	return Heads
}

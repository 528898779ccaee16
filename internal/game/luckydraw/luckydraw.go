// Package luckydraw implements the twice-daily prize draw.
package luckydraw

import (
	"fmt"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
)

// Prize is one entry of the draw table.
type Prize struct {
	Points int64
	Entry  bool
	Label  string
}

// Prizes is the draw table, drawn uniformly.
var Prizes = []Prize{
	{Points: 10, Label: "10 pts"},
	{Points: 25, Label: "25 pts"},
	{Points: 50, Label: "50 pts"},
	{Entry: true, Label: "Extra Giveaway Entry"},
	{Points: 5, Label: "5 pts"},
}

// Game is the lucky draw. It takes no bet and grants no XP.
type Game struct{}

// New creates the lucky draw game.
func New() *Game { return &Game{} }

func (g *Game) Name() string           { return "Lucky Draw" }
func (g *Game) Kind() model.ActionKind { return model.ActionLuckyDraw }
func (g *Game) Description() string    { return "Draw a free prize every few hours" }

func (g *Game) ValidateBet(req game.Request) error {
	if req.Bet != 0 {
		return fmt.Errorf("%w: lucky draw takes no bet", game.ErrInvalidBet)
	}
	return nil
}

func (g *Game) Resolve(rng game.Rand, _ model.EconomyConfig, _ game.Request) game.Outcome {
	p := Prizes[rng.IntN(len(Prizes))]
	out := game.Outcome{
		Points: p.Points,
		Win:    true,
		Commit: true,
		Label:  p.Label,
	}
	if p.Entry {
		out.BonusEntries = 1
	}
	return out
}

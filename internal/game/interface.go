// Package game defines the reward games and the registry that looks them up.
//
// Games are pure: they turn a random source, the economy config and a
// request into an Outcome. Committing the outcome is the caller's job.
package game

import (
	"errors"

	"kingdom-hub/internal/model"
)

// ErrInvalidBet is returned by ValidateBet for a bet the game does not accept.
var ErrInvalidBet = errors.New("invalid bet")

// Request carries the player's input for one play.
type Request struct {
	Bet    int64
	Choice string
}

// Outcome is the result of resolving one play.
type Outcome struct {
	// Points is the base points delta before shop and global multipliers.
	// Negative values are losses and are never multiplied.
	Points int64
	// XP is the raw XP gain before the XP multiplier.
	XP int64
	// Win reports whether the play paid out anything.
	Win bool
	// Commit reports whether the outcome changes the account at all.
	Commit bool
	// BonusEntries is the number of free giveaway entries granted.
	BonusEntries int
	// CountsAsSpin increments the account's spin and winnings counters.
	CountsAsSpin bool
	// CountsWinnings adds the credited points to lifetime winnings without
	// counting a spin.
	CountsWinnings bool
	// Label is a short human-readable result, e.g. "50 pts" or "Try Again".
	Label string
	// Details holds game specific display data.
	Details map[string]any
}

// Game is a cooldown-gated reward action.
type Game interface {
	// Name returns the display name.
	Name() string
	// Kind returns the action kind used for cooldowns and logging.
	Kind() model.ActionKind
	// Description returns a short description for help text.
	Description() string
	// ValidateBet checks the request before any state is touched.
	ValidateBet(req Request) error
	// Resolve computes the outcome. It must not have side effects beyond rng.
	Resolve(rng Rand, cfg model.EconomyConfig, req Request) Outcome
}

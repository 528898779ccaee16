// Package miner implements the clicker mine and its energy meter.
package miner

import (
	"fmt"
	"sync"
	"time"

	"kingdom-hub/internal/game"
	"kingdom-hub/internal/model"
)

// XPReward is granted per click.
const XPReward = 1

// Game is the clicker. Its base yield is cfg.MinerRatePerClick; permanent shop
// bonuses are added by the caller.
type Game struct{}

// New creates the miner game.
func New() *Game { return &Game{} }

func (g *Game) Name() string           { return "Kingdom Miner" }
func (g *Game) Kind() model.ActionKind { return model.ActionMiner }
func (g *Game) Description() string    { return "Click to mine points, energy permitting" }

func (g *Game) ValidateBet(req game.Request) error {
	if req.Bet != 0 {
		return fmt.Errorf("%w: mining takes no bet", game.ErrInvalidBet)
	}
	return nil
}

func (g *Game) Resolve(_ game.Rand, cfg model.EconomyConfig, _ game.Request) game.Outcome {
	return game.Outcome{
		Points: cfg.MinerRatePerClick,
		XP:     XPReward,
		Win:    true,
		Commit: true,
		Label:  fmt.Sprintf("%d pts", cfg.MinerRatePerClick),
	}
}

// EnergyConfig tunes the meter.
type EnergyConfig struct {
	Max           int
	ClickCost     int
	RegenAmount   int
	RegenInterval time.Duration
}

// DefaultEnergyConfig returns 100 max energy, 10 per click, +5 every 3 seconds.
func DefaultEnergyConfig() EnergyConfig {
	return EnergyConfig{Max: 100, ClickCost: 10, RegenAmount: 5, RegenInterval: 3 * time.Second}
}

type energyState struct {
	level int
	at    time.Time
}

// EnergyMeter tracks clicker energy per account in memory.
// Accounts start full.
type EnergyMeter struct {
	cfg   EnergyConfig
	mu    sync.Mutex
	state map[int64]energyState
}

// NewEnergyMeter creates a meter.
func NewEnergyMeter(cfg EnergyConfig) *EnergyMeter {
	return &EnergyMeter{cfg: cfg, state: make(map[int64]energyState)}
}

// current returns the regenerated state. Callers hold m.mu.
func (m *EnergyMeter) current(accountID int64, now time.Time) energyState {
	s, ok := m.state[accountID]
	if !ok {
		return energyState{level: m.cfg.Max, at: now}
	}
	if s.level >= m.cfg.Max || m.cfg.RegenInterval <= 0 {
		return energyState{level: min(s.level, m.cfg.Max), at: now}
	}
	ticks := int(now.Sub(s.at) / m.cfg.RegenInterval)
	if ticks <= 0 {
		return s
	}
	s.level = min(m.cfg.Max, s.level+ticks*m.cfg.RegenAmount)
	s.at = s.at.Add(time.Duration(ticks) * m.cfg.RegenInterval)
	if s.level == m.cfg.Max {
		s.at = now
	}
	return s
}

// Level returns the account's energy at now.
func (m *EnergyMeter) Level(accountID int64, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current(accountID, now).level
}

// Consume spends one click of energy. It reports false and leaves the meter
// untouched when there is not enough energy.
func (m *EnergyMeter) Consume(accountID int64, now time.Time) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.current(accountID, now)
	if s.level < m.cfg.ClickCost {
		m.state[accountID] = s
		return s.level, false
	}
	if s.level == m.cfg.Max {
		s.at = now
	}
	s.level -= m.cfg.ClickCost
	m.state[accountID] = s
	return s.level, true
}

// Refund returns one click of energy, used when a click could not be committed.
func (m *EnergyMeter) Refund(accountID int64, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.current(accountID, now)
	s.level = min(m.cfg.Max, s.level+m.cfg.ClickCost)
	m.state[accountID] = s
}

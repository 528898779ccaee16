// Package shop provides the item catalog and its Telegram presentation.
package shop

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind is the effect category of a catalog item.
type Kind string

// Item kinds.
const (
	KindPermanent Kind = "MODIFIER_PERMANENT" // stacks into the mining rate forever
	KindTimed     Kind = "MODIFIER_TIMED"     // point multiplier until it expires
	KindCosmetic  Kind = "COSMETIC"
)

// Catalog item ids.
const (
	ItemMinerMk2   = "miner_mk2"
	ItemMinerMk3   = "miner_mk3"
	ItemXPBoost2x  = "xp_boost_2x"
	ItemCrownBadge = "crown_badge"
)

// ErrInvalidCatalog is returned when a catalog file is malformed.
var ErrInvalidCatalog = errors.New("invalid shop catalog")

// Item is an immutable catalog entry.
type Item struct {
	ID              string        `yaml:"id"`
	Name            string        `yaml:"name"`
	Emoji           string        `yaml:"emoji"`
	Description     string        `yaml:"description"`
	Price           int64         `yaml:"price"`
	Kind            Kind          `yaml:"kind"`
	MiningBonus     int64         `yaml:"mining_bonus"`
	PointMultiplier float64       `yaml:"point_multiplier"`
	Duration        time.Duration `yaml:"duration"`
}

// Stackable reports whether the item may be bought again while owned.
// Only timed modifiers stack.
func (i Item) Stackable() bool {
	return i.Kind == KindTimed
}

// Catalog is an ordered, read-only set of items.
type Catalog struct {
	items []Item
	byID  map[string]Item
}

// NewCatalog builds a catalog from items in display order.
func NewCatalog(items []Item) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Item, len(items))}
	for _, it := range items {
		if err := validateItem(it); err != nil {
			return nil, err
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalidCatalog, it.ID)
		}
		c.byID[it.ID] = it
		c.items = append(c.items, it)
	}
	return c, nil
}

func validateItem(it Item) error {
	switch {
	case it.ID == "":
		return fmt.Errorf("%w: item without id", ErrInvalidCatalog)
	case it.Price < 0:
		return fmt.Errorf("%w: %s has negative price", ErrInvalidCatalog, it.ID)
	}
	switch it.Kind {
	case KindPermanent:
		if it.MiningBonus < 0 {
			return fmt.Errorf("%w: %s has negative mining bonus", ErrInvalidCatalog, it.ID)
		}
	case KindTimed:
		if it.Duration <= 0 || it.PointMultiplier < 1 {
			return fmt.Errorf("%w: %s needs a duration and a multiplier >= 1", ErrInvalidCatalog, it.ID)
		}
	case KindCosmetic:
	default:
		return fmt.Errorf("%w: %s has unknown kind %q", ErrInvalidCatalog, it.ID, it.Kind)
	}
	return nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]Item{
		{
			ID:          ItemMinerMk2,
			Name:        "Miner Mk2",
			Emoji:       "⛏️",
			Description: "+1 point per mining click, forever",
			Price:       500,
			Kind:        KindPermanent,
			MiningBonus: 1,
		},
		{
			ID:          ItemMinerMk3,
			Name:        "Miner Mk3",
			Emoji:       "⚒️",
			Description: "+5 points per mining click, forever",
			Price:       2500,
			Kind:        KindPermanent,
			MiningBonus: 5,
		},
		{
			ID:              ItemXPBoost2x,
			Name:            "2x Boost",
			Emoji:           "⚡",
			Description:     "Double points from games for 1 hour",
			Price:           1000,
			Kind:            KindTimed,
			PointMultiplier: 2,
			Duration:        time.Hour,
		},
		{
			ID:          ItemCrownBadge,
			Name:        "Crown Badge",
			Emoji:       "👑",
			Description: "Show everyone who rules the kingdom",
			Price:       10000,
			Kind:        KindCosmetic,
		},
	})
	return c
}

// LoadCatalog reads a YAML catalog of the form `items: [...]`.
// An empty path returns the default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var doc struct {
		Items []Item `yaml:"items"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidCatalog)
	}
	return NewCatalog(doc.Items)
}

// All returns every item in display order.
func (c *Catalog) All() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the item with the given id.
func (c *Catalog) Get(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// FormatDuration returns a short human-readable duration.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "permanent"
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute:
		return fmt.Sprintf("%d min", int(d.Minutes()))
	default:
		return fmt.Sprintf("%d s", int(d.Seconds()))
	}
}

package service

import (
	"cmp"
	"slices"

	"kingdom-hub/internal/model"
)

// DefaultLeaderboardSize is used when a non-positive limit is requested.
const DefaultLeaderboardSize = 10

// Leaderboard ranks accounts by points, excluding adminID.
// Ties are broken by XP and then by id.
func Leaderboard(accounts []*model.Account, adminID int64, limit int) []*model.Account {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	ranked := slices.DeleteFunc(slices.Clone(accounts), func(a *model.Account) bool { return a.ID == adminID })
	slices.SortFunc(ranked, func(a, b *model.Account) int {
		return cmp.Or(
			cmp.Compare(b.Points, a.Points),
			cmp.Compare(b.XP, a.XP),
			cmp.Compare(a.ID, b.ID),
		)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/service"
)

// LeaderboardEntry is one ranked account.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
	Level    int    `json:"level"`
}

// GetLeaderboard returns the top accounts by points
func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, ok := queryInt(c, "limit", service.DefaultLeaderboardSize)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	top := service.Leaderboard(h.Ledger.List(), h.AdminID, int(min(limit, maxListLimit)))
	entries := make([]LeaderboardEntry, len(top))
	for i, a := range top {
		entries[i] = LeaderboardEntry{Rank: i + 1, ID: a.ID, Username: a.Username, Points: a.Points, Level: a.Level}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// GetTransactions returns the audit log, newest first. account_id filters
// to one account.
func (h *Handler) GetTransactions(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	limit = min(limit, maxListLimit)

	var txs []model.Transaction
	if c.Query("account_id") != "" {
		id, ok := queryInt(c, "account_id", 0)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account_id"})
			return
		}
		txs = h.TxLog.ListFor(id, int(limit))
	} else {
		txs = h.TxLog.List(int(limit))
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// GetConfig returns the effective economy config
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.Config.Get())
}

// GetInteractions returns the engagement log, newest first.
func (h *Handler) GetInteractions(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	items := h.Activity.Interactions(int(min(limit, maxListLimit)))
	if items == nil {
		items = []model.Interaction{}
	}
	c.JSON(http.StatusOK, gin.H{"interactions": items})
}

// Package handlers implements the read-only HTTP API.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"kingdom-hub/internal/model"
	"kingdom-hub/internal/service"
)

const maxListLimit = 200

// ActivityLog is the engagement log read by GetInteractions.
type ActivityLog interface {
	Interactions(limit int) []model.Interaction
}

// Handler serves the economy read endpoints.
type Handler struct {
	Ledger   *service.Ledger
	TxLog    *service.TransactionLog
	Config   *service.ConfigStore
	Activity ActivityLog
	AdminID  int64
}

// NewHandler creates a Handler.
func NewHandler(ledger *service.Ledger, txlog *service.TransactionLog, config *service.ConfigStore, activity ActivityLog, adminID int64) *Handler {
	return &Handler{Ledger: ledger, TxLog: txlog, Config: config, Activity: activity, AdminID: adminID}
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int64) (int64, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

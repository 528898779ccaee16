package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kingdom-hub/internal/http/handlers"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/pkg/lock"
	"kingdom-hub/internal/repository"
	"kingdom-hub/internal/service"
	"kingdom-hub/internal/store"
)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestEngine(t *testing.T) (*gin.Engine, *service.Ledger, *service.TransactionLog) {
	r, ledger, txlog, _ := newTestEngineWithStore(t)
	return r, ledger, txlog
}

func newTestEngineWithStore(t *testing.T) (*gin.Engine, *service.Ledger, *service.TransactionLog, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	st, err := store.Open(ctx, repository.NewMemoryKV(), model.DefaultEconomyConfig())
	require.NoError(t, err)
	txlog := service.NewTransactionLog(st)
	cfg := service.NewConfigStore(st)
	ledger := service.NewLedger(st, lock.NewAccountLock(), cfg, txlog)

	for i, name := range []string{"admin", "alice", "bob"} {
		_, err := ledger.Create(ctx, &model.Account{
			ID: int64(i + 1), Username: name, Points: int64(100 * (i + 1)), Level: 1, ReferralCode: name,
		})
		require.NoError(t, err)
	}

	r := NewEngine(handlers.NewHandler(ledger, txlog, cfg, st, 1), handlers.NewHealthHandler(st, "test"))
	return r, ledger, txlog, st
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	r, _, _ := newTestEngine(t)

	assert.Equal(t, http.StatusOK, get(t, r, "/healthz").Code)

	w := get(t, r, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"healthy"`)
}

func TestReadinessReportsStorageDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	health := handlers.NewHealthHandler(downPinger{}, "test")
	r.GET("/readyz", health.Readiness)

	w := get(t, r, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	r, _, _ := newTestEngine(t)

	w := get(t, r, "/api/leaderboard?limit=5")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Leaderboard []handlers.LeaderboardEntry `json:"leaderboard"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Leaderboard, 2)
	assert.Equal(t, "bob", body.Leaderboard[0].Username)
	assert.Equal(t, 1, body.Leaderboard[0].Rank)

	assert.Equal(t, http.StatusBadRequest, get(t, r, "/api/leaderboard?limit=-1").Code)
}

func TestTransactionsEndpoint(t *testing.T) {
	r, ledger, txlog := newTestEngine(t)
	ctx := context.Background()
	alice, err := ledger.Get(2)
	require.NoError(t, err)
	bob, err := ledger.Get(3)
	require.NoError(t, err)
	_, err = txlog.RecordFor(ctx, alice, model.TxGameWin, 10, "win")
	require.NoError(t, err)
	_, err = txlog.RecordFor(ctx, bob, model.TxGameLoss, -10, "loss")
	require.NoError(t, err)

	var body struct {
		Transactions []model.Transaction `json:"transactions"`
	}
	w := get(t, r, "/api/transactions")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Transactions, 2)
	assert.Equal(t, "bob", body.Transactions[0].Username)

	w = get(t, r, "/api/transactions?account_id=2")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, int64(10), body.Transactions[0].Amount)
}

func TestConfigEndpoint(t *testing.T) {
	r, _, _ := newTestEngine(t)

	w := get(t, r, "/api/config")
	require.Equal(t, http.StatusOK, w.Code)

	var cfg model.EconomyConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, model.DefaultEconomyConfig(), cfg)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestEngine(t)
	w := get(t, r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestInteractionsEndpoint(t *testing.T) {
	r, _, _, st := newTestEngineWithStore(t)
	ctx := context.Background()
	label := "25 pts"
	require.NoError(t, st.AppendInteraction(ctx, model.Interaction{AccountID: 2, Username: "alice", Kind: "spin", Reward: &label}))
	require.NoError(t, st.AppendInteraction(ctx, model.Interaction{AccountID: 3, Username: "bob", Kind: "miner"}))

	var body struct {
		Interactions []model.Interaction `json:"interactions"`
	}
	w := get(t, r, "/api/interactions?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Interactions, 1)
	assert.Equal(t, "bob", body.Interactions[0].Username)

	assert.Equal(t, http.StatusBadRequest, get(t, r, "/api/interactions?limit=zero").Code)
}

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kingdom-hub/internal/config"
	"kingdom-hub/internal/metrics"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/repository"
	"kingdom-hub/internal/store"
)

func TestRefreshGaugesExcludesAdmin(t *testing.T) {
	RefreshGauges([]*model.Account{
		{ID: 1, Points: 999999},
		{ID: 10, Points: 150},
		{ID: 11, Points: 50},
	}, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Accounts))
	assert.Equal(t, 200.0, testutil.ToFloat64(metrics.PointsInCirculation))
}

func TestTrimInteractions(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, repository.NewMemoryKV(), model.DefaultEconomyConfig())
	require.NoError(t, err)

	for i := range 8 {
		require.NoError(t, st.AppendInteraction(ctx, model.Interaction{AccountID: int64(i), Kind: "spin"}))
	}
	require.NoError(t, TrimInteractions(ctx, st, 5))

	kept := st.Interactions(0)
	require.Len(t, kept, 5)
	assert.Equal(t, int64(7), kept[0].AccountID)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	st, err := store.Open(context.Background(), repository.NewMemoryKV(), model.DefaultEconomyConfig())
	require.NoError(t, err)

	s := NewScheduler(st, config.JobsConfig{GaugesSpec: "not a spec", TrimSpec: "0 0 * * *", Timezone: "Mars/Olympus"}, 1)
	assert.Error(t, s.Start(context.Background()))
}

func TestSchedulerStartStop(t *testing.T) {
	st, err := store.Open(context.Background(), repository.NewMemoryKV(), model.DefaultEconomyConfig())
	require.NoError(t, err)

	s := NewScheduler(st, config.JobsConfig{GaugesSpec: "0 * * * *", TrimSpec: "0 0 * * *", MaxInteractions: 10, Timezone: "UTC"}, 1)
	require.NoError(t, s.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

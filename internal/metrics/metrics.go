// Package metrics exposes the hub's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsTotal counts recorded transactions by kind.
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_transactions_total",
			Help: "Transactions recorded, by kind",
		},
		[]string{"kind"},
	)

	// PointsFlowTotal sums absolute points moved, by direction.
	PointsFlowTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_points_flow_total",
			Help: "Absolute points credited or debited",
		},
		[]string{"direction"},
	)

	// ActionsTotal counts reward actions by kind and result.
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_actions_total",
			Help: "Reward actions, by kind and result",
		},
		[]string{"kind", "result"},
	)

	// LevelUpsTotal counts levels gained.
	LevelUpsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_level_ups_total",
		Help: "Levels gained across all accounts",
	})

	// Accounts is the number of accounts, refreshed by the gauges job.
	Accounts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_accounts",
		Help: "Number of accounts",
	})

	// PointsInCirculation is the sum of all non-admin balances.
	PointsInCirculation = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hub_points_in_circulation",
		Help: "Sum of points held by non-admin accounts",
	})
)

// Action results.
const (
	ResultWin      = "win"
	ResultLoss     = "loss"
	ResultNothing  = "nothing"
	ResultRejected = "rejected"
)

// ObservePoints records a points delta in the flow counter.
func ObservePoints(delta int64) {
	switch {
	case delta > 0:
		PointsFlowTotal.WithLabelValues("credit").Add(float64(delta))
	case delta < 0:
		PointsFlowTotal.WithLabelValues("debit").Add(float64(-delta))
	}
}

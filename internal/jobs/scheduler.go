// Package jobs runs the hub's periodic background work on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"kingdom-hub/internal/config"
	"kingdom-hub/internal/metrics"
	"kingdom-hub/internal/model"
	"kingdom-hub/internal/store"
)

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron    *cron.Cron
	store   *store.Store
	cfg     config.JobsConfig
	adminID int64
}

// NewScheduler creates a scheduler in the configured timezone.
// An unknown timezone falls back to UTC.
func NewScheduler(st *store.Store, cfg config.JobsConfig, adminID int64) *Scheduler {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Warn().Err(err).Str("timezone", cfg.Timezone).Msg("Unknown timezone, using UTC")
		} else {
			loc = l
		}
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		store:   st,
		cfg:     cfg,
		adminID: adminID,
	}
}

// Start registers the jobs and starts the runner. Gauges are refreshed once
// immediately so /metrics is populated before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.GaugesSpec, func() {
		RefreshGauges(s.store.Accounts(), s.adminID)
	}); err != nil {
		return fmt.Errorf("failed to schedule gauges job: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.TrimSpec, func() {
		log.Debug().Msg("[CRON] Trimming interaction log")
		if err := TrimInteractions(ctx, s.store, s.cfg.MaxInteractions); err != nil {
			log.Error().Err(err).Msg("[CRON] Interaction trim failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule trim job: %w", err)
	}

	RefreshGauges(s.store.Accounts(), s.adminID)
	s.cron.Start()
	log.Info().Str("gauges", s.cfg.GaugesSpec).Str("trim", s.cfg.TrimSpec).Msg("Job scheduler started")
	return nil
}

// Stop stops the runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Job scheduler stopped")
}

// RefreshGauges recomputes the account and circulation gauges.
func RefreshGauges(accounts []*model.Account, adminID int64) {
	var count int
	var circulating int64
	for _, a := range accounts {
		if a.ID == adminID {
			continue
		}
		count++
		circulating += a.Points
	}
	metrics.Accounts.Set(float64(count))
	metrics.PointsInCirculation.Set(float64(circulating))
}

// TrimInteractions caps the engagement log at keep entries.
func TrimInteractions(ctx context.Context, st *store.Store, keep int) error {
	dropped, err := st.TrimInteractions(ctx, keep)
	if err != nil {
		return err
	}
	if dropped > 0 {
		log.Info().Int("dropped", dropped).Int("kept", keep).Msg("Interaction log trimmed")
	}
	return nil
}

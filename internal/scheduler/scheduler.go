// Package scheduler runs the nightly pipeline rebuild on a cron schedule:
// ingest fresh game logs, recompute features and baselines, rebuild the
// matchup dataset and retrain the model.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/config"
	"github.com/ksarika79522/nbagameplan-sim/internal/ingest"
	"github.com/ksarika79522/nbagameplan-sim/internal/metrics"
	"github.com/ksarika79522/nbagameplan-sim/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler manages the nightly pipeline job.
type Scheduler struct {
	cfg      *config.Config
	ingestor *ingest.Ingestor
	svc      *service.Service
	cron     *cron.Cron
	stopChan chan struct{}
}

// NewScheduler creates a scheduler instance.
func NewScheduler(cfg *config.Config, ingestor *ingest.Ingestor, svc *service.Service) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		ingestor: ingestor,
		svc:      svc,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start registers the nightly job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlyPipelineCron, func() {
		select {
		case <-s.stopChan:
			return
		default:
		}
		if err := s.RunPipeline(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly pipeline failed")
			metrics.RecordError("scheduler", "pipeline")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly pipeline: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlyPipelineCron).
		Str("season", s.cfg.Season).
		Msg("Nightly pipeline scheduled")

	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// RunPipeline executes one full pipeline pass: ingest, then rebuild every
// downstream stage for the configured season.
func (s *Scheduler) RunPipeline(ctx context.Context) error {
	start := time.Now()
	log.Info().Str("season", s.cfg.Season).Msg("Running nightly pipeline...")

	ingestRes, err := s.ingestor.Run(ctx, s.cfg.Season)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	metrics.RecordBuild("ingest", "success", time.Since(start).Seconds(), ingestRes.Inserted, ingestRes.Skipped)

	if err := s.svc.RebuildPipeline(ctx, s.cfg.Season, s.cfg.FeatureWindow, s.cfg.MinGames); err != nil {
		return err
	}

	log.Info().
		Str("season", s.cfg.Season).
		Int("new_logs", ingestRes.Inserted).
		Dur("duration", time.Since(start)).
		Msg("Nightly pipeline complete")

	return nil
}

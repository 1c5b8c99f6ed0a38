package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const sweepTimeout = 30 * time.Second

// StartSessionSweeper schedules SweepExpired on a cron spec such as
// "@every 1m". Stop the returned scheduler on shutdown.
func StartSessionSweeper(svc WizardService, schedule string, logger zerolog.Logger) (*cron.Cron, error) {
	log := logger.With().Str("component", "session_sweeper").Logger()

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := svc.SweepExpired(ctx); err != nil {
			log.Error().Err(err).Msg("Session sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	log.Info().Str("schedule", schedule).Msg("Session sweeper started")
	return c, nil
}

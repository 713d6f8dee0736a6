package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/service"
)

// StartSLASweeper schedules the periodic breach-flag sweep. The sweep only
// moves flags false to true, so missed or overlapping runs are safe.
func StartSLASweeper(cfg config.SweeperConfig, slaService *service.SLAService, logger *zap.Logger) (*cron.Cron, error) {
	if !cfg.Enabled || slaService == nil {
		return nil, nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := slaService.SweepBreaches(ctx); err != nil {
			logger.Error("sla breach sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	logger.Info("sla breach sweeper started", zap.String("schedule", cfg.Schedule))
	return scheduler, nil
}

package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"wanderlust/internal/config"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.QueueConfig
}

func NewScheduler(redis config.RedisConfig, cfg config.QueueConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		RedisOpt(redis),
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler, cfg: cfg}
}

// RegisterJobs registers every periodic task.
func (s *Scheduler) RegisterJobs() error {
	return s.registerFixGeoJob()
}

// ================================================
// Geo repair: re-geocode listings stuck at (0,0)
// ================================================
func (s *Scheduler) registerFixGeoJob() error {
	if s.cfg.GeoRepairCron == "" {
		log.Info().Msg("FixListingGeo schedule disabled")
		return nil
	}

	task, err := NewFixGeoTask(0)
	if err != nil {
		return err
	}

	if _, err := s.scheduler.Register(s.cfg.GeoRepairCron, task, asynq.Unique(time.Hour)); err != nil {
		return fmt.Errorf("register fix geo job: %w", err)
	}

	log.Info().Str("cron", s.cfg.GeoRepairCron).Msg("Registered FixListingGeo")
	return nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

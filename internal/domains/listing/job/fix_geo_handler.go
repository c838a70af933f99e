package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/infrastructure/queue"
)

// GeoRepairRunner is satisfied by *service.GeoRepairer.
type GeoRepairRunner interface {
	Run(ctx context.Context, limit int) (model.GeoRepairReport, error)
}

// FixGeoHandler runs the scheduled geo repair.
type FixGeoHandler struct {
	repairer GeoRepairRunner
}

func NewFixGeoHandler(repairer GeoRepairRunner) *FixGeoHandler {
	return &FixGeoHandler{repairer: repairer}
}

func (h *FixGeoHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.Decode[queue.FixGeoPayload](task)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode fix geo payload")
		return err
	}

	report, err := h.repairer.Run(ctx, payload.Limit)
	if err != nil {
		log.Error().
			Err(err).
			Int("fixed", report.Fixed).
			Msg("Geo repair aborted")
		return fmt.Errorf("geo repair: %w", err)
	}

	log.Info().
		Int("scanned", report.Scanned).
		Int("fixed", report.Fixed).
		Int("unresolved", report.Unresolved).
		Msg("Geo repair completed")
	return nil
}

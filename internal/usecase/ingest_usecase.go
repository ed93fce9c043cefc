package usecase

import (
	"context"

	"go.uber.org/zap"

	"traffic-recorder/internal/capture"
	"traffic-recorder/internal/domain/entity"
)

type IngestUsecase interface {
	// Ingest feeds the envelopes to the front door in order and tallies the outcomes
	Ingest(ctx context.Context, envelopes []entity.EventEnvelope) entity.IngestResult
}

type ingestUsecase struct {
	ingestor *capture.Ingestor
	logger   *zap.Logger
}

func NewIngestUsecase(ingestor *capture.Ingestor, logger *zap.Logger) IngestUsecase {
	return &ingestUsecase{
		ingestor: ingestor,
		logger:   logger,
	}
}

func (u *ingestUsecase) Ingest(ctx context.Context, envelopes []entity.EventEnvelope) entity.IngestResult {
	var result entity.IngestResult

	for _, envelope := range envelopes {
		event, err := envelope.ToEvent()
		if err != nil {
			u.logger.Debug("Rejecting envelope",
				zap.String("request_id", envelope.RequestID),
				zap.Error(err),
			)
			result.Rejected++
			continue
		}

		switch u.ingestor.Handle(ctx, event) {
		case capture.OutcomeAccepted:
			result.Accepted++
		case capture.OutcomeFiltered:
			result.Filtered++
		case capture.OutcomeOrphan:
			result.Orphaned++
		case capture.OutcomeRateLimited:
			result.RateLimited++
		default:
			result.Rejected++
		}
	}

	return result
}

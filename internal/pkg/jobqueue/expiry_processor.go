package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/medihub/medihub/internal/pkg/moderation"
)

// SanctionExpirer is the slice of the moderation service the sweep needs
type SanctionExpirer interface {
	ExpireDueSanctions(ctx context.Context, batch int) (int, error)
}

// ExpiryProcessor flips lapsed suspensions to expired
type ExpiryProcessor struct {
	expirer SanctionExpirer
}

func NewExpiryProcessor(expirer SanctionExpirer) *ExpiryProcessor {
	return &ExpiryProcessor{expirer: expirer}
}

func (p *ExpiryProcessor) Process(ctx context.Context, job *Job) error {
	payload, err := SanctionExpirySweepJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid sweep payload: %w", err)
	}
	batch := payload.Batch
	if batch <= 0 {
		batch = moderation.DefaultExpiryBatch
	}

	n, err := p.expirer.ExpireDueSanctions(ctx, batch)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Infof("[JobQueue] Expired %d sanctions (triggered by %s)", n, payload.TriggeredBy)
	}
	return nil
}

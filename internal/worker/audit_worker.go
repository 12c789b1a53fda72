package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
)

// AuditWorker retries pricing audit rows whose first insert failed. Rows
// wait in an in-memory queue; a process restart loses queued rows, which is
// the accepted cost of keeping audit logging off the order path.
type AuditWorker struct {
	logs     *repository.PricingLogRepository
	queue    chan models.PricingCalculationLog
	interval time.Duration
}

// NewAuditWorker constructs an AuditWorker draining the given queue.
func NewAuditWorker(logs *repository.PricingLogRepository, queue chan models.PricingCalculationLog, interval time.Duration) *AuditWorker {
	return &AuditWorker{
		logs:     logs,
		queue:    queue,
		interval: interval,
	}
}

// Start begins the periodic retry loop until context is canceled.
func (w *AuditWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting audit retry worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.drain(ctx)
		case <-ctx.Done():
			log.Info().Msg("Audit retry worker stopped")
			return
		}
	}
}

// drain attempts every queued row once. A row that fails again goes back to
// the queue for the next tick unless the queue is full.
func (w *AuditWorker) drain(ctx context.Context) {
	pending := len(w.queue)
	if pending == 0 {
		return
	}
	log.Info().Int("count", pending).Msg("Retrying queued audit rows")

	for i := 0; i < pending; i++ {
		select {
		case <-ctx.Done():
			return
		case row := <-w.queue:
			if err := w.logs.Insert(ctx, &row); err != nil {
				log.Error().Err(err).Int("order_id", row.OrderID).Msg("Audit retry failed")
				select {
				case w.queue <- row:
				default:
					log.Error().Int("order_id", row.OrderID).Msg("Audit retry queue full, dropping row")
				}
			}
		default:
			return
		}
	}
}

package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/print24/pricing_api/internal/repository"
)

// PruneWorker sweeps price book entries whose product no longer exists.
// Reads already skip orphaned entries, so the sweep is pure hygiene and can
// run on a relaxed interval.
type PruneWorker struct {
	books    *repository.PriceBookRepository
	interval time.Duration
}

// NewPruneWorker constructs a PruneWorker.
func NewPruneWorker(books *repository.PriceBookRepository, interval time.Duration) *PruneWorker {
	return &PruneWorker{books: books, interval: interval}
}

// Start begins the periodic sweep until context is canceled.
func (w *PruneWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting orphan prune worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Orphan prune worker stopped")
			return
		}
	}
}

func (w *PruneWorker) run(ctx context.Context) {
	n, err := w.books.PruneOrphanedEntries(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune orphaned entries")
		return
	}
	if n > 0 {
		log.Info().Int64("pruned", n).Msg("Pruned orphaned price book entries")
	}
}

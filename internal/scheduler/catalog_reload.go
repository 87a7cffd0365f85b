package scheduler

import (
	"context"
	"time"

	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/logger"
	"github.com/adisetya/sheethub/internal/sources/catalog"
	"github.com/adisetya/sheethub/internal/view"
)

// RowMirror receives a copy of each successful catalog fetch. Writes are
// best effort; a failed mirror never blocks the reload.
type RowMirror interface {
	SaveCatalogRows(ctx context.Context, rows []domain.Row) error
}

// CatalogReloader keeps the view engine base set in sync with the catalog
// source: one load at startup, then a periodic refresh plus a manual
// trigger channel.
type CatalogReloader struct {
	loader        *catalog.Loader
	engine        *view.Engine
	mirror        RowMirror // nil disables mirroring
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader.
func NewCatalogReloader(
	loader *catalog.Loader,
	engine *view.Engine,
	mirror RowMirror,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		loader:        loader,
		engine:        engine,
		mirror:        mirror,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog immediately and begins the periodic refresh.
// A failed initial fetch degrades to an empty base set instead of
// aborting startup; the local additions still load.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	cr.Reload(ctx)

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cr.Reload(ctx)
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				cr.Reload(ctx)
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (cr *CatalogReloader) Stop() {
	close(cr.stopCh)
}

// Reload fetches the catalog and replaces the engine base set. Fetch
// failures keep the engine serving local rows only. Each successful fetch
// is also mirrored through the store.
func (cr *CatalogReloader) Reload(ctx context.Context) {
	cr.logger.Info("reloading catalog rows")

	rows, err := cr.loader.Load(ctx)
	if err != nil {
		cr.logger.Warn("catalog fetch failed, falling back to local rows only",
			logger.Error(err))
		cr.engine.LoadRows(nil)
		return
	}
	cr.logger.Info("loaded catalog rows", logger.Int("count", len(rows)))
	cr.engine.LoadRows(rows)

	if cr.mirror == nil {
		return
	}
	if err := cr.mirror.SaveCatalogRows(ctx, rows); err != nil {
		cr.logger.Warn("failed to mirror catalog rows", logger.Error(err))
	}
}

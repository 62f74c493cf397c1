package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ReconcileWorker is a background worker that alternates between idling
// and running reconciliation passes. A pass failure is not fatal: the
// worker idles and tries again with state recomputed from the store.
type ReconcileWorker struct {
	service      *ReconcileService
	logger       zerolog.Logger
	idleInterval time.Duration
	stopCh       chan struct{}
	doneCh       chan struct{}
	mu           sync.Mutex
	running      bool
	cancel       context.CancelFunc
}

// ReconcileWorkerConfig holds configuration for the reconcile worker
type ReconcileWorkerConfig struct {
	IdleInterval time.Duration // How long to idle between passes
}

// DefaultReconcileWorkerConfig returns sensible defaults
func DefaultReconcileWorkerConfig() ReconcileWorkerConfig {
	return ReconcileWorkerConfig{
		IdleInterval: 10 * time.Second,
	}
}

// NewReconcileWorker creates a new reconcile worker
func NewReconcileWorker(service *ReconcileService, logger zerolog.Logger, config ReconcileWorkerConfig) *ReconcileWorker {
	if config.IdleInterval <= 0 {
		config.IdleInterval = 10 * time.Second
	}

	return &ReconcileWorker{
		service:      service,
		logger:       logger.With().Str("component", "reconcile_worker").Logger(),
		idleInterval: config.IdleInterval,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background reconciliation loop
func (w *ReconcileWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.logger.Info().
		Dur("idle_interval", w.idleInterval).
		Msg("Starting reconcile worker")

	go w.run(ctx)
}

// Stop gracefully stops the worker. A pass that is scanning pages is
// cancelled between fetches; any in-flight settlement transaction
// completes before the loop exits.
func (w *ReconcileWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping reconcile worker")
	cancel()
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Reconcile worker stopped")
}

// run is the main loop: one pass, then idle, forever.
func (w *ReconcileWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		w.runPass(ctx)

		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-time.After(w.idleInterval):
		}
	}
}

func (w *ReconcileWorker) runPass(ctx context.Context) {
	startTime := time.Now()

	result, err := w.service.RunPass(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Error().Err(err).Msg("Reconciliation pass failed")
		return
	}

	if result.Reason == PassIdle {
		w.logger.Debug().Msg("No unsettled obligations")
		return
	}

	w.logger.Info().
		Str("reason", string(result.Reason)).
		Int("settled", result.Settled).
		Int("unmatched", result.Unmatched).
		Int("pages", result.Pages).
		Int("remaining", result.Remaining).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed reconciliation pass")
}

// IsRunning returns whether the worker is currently running
func (w *ReconcileWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

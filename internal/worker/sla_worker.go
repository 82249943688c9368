package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dispatch/internal/config"
	"github.com/spec-kit/ticket-dispatch/internal/service"
)

// SlaWorker drives the periodic SLA sweep on a cron schedule. Each run is
// bounded by a timeout; the sweep itself is idempotent, so a timed-out run
// resumes safely on the next tick.
type SlaWorker struct {
	cron    *cron.Cron
	sla     *service.SlaService
	cfg     config.SlaConfig
	logger  *zap.Logger
	running atomic.Bool
}

// NewSlaWorker creates the worker.
func NewSlaWorker(sla *service.SlaService, cfg config.SlaConfig, logger *zap.Logger) *SlaWorker {
	return &SlaWorker{
		cron:   cron.New(),
		sla:    sla,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the sweep schedule and launches the cron loop.
func (w *SlaWorker) Start() error {
	if !w.cfg.SweepEnabled {
		w.logger.Info("sla sweep disabled")
		return nil
	}
	if _, err := w.cron.AddFunc(w.cfg.SweepSchedule, w.runSweep); err != nil {
		return fmt.Errorf("invalid sla sweep schedule %q: %w", w.cfg.SweepSchedule, err)
	}
	w.cron.Start()
	w.logger.Info("sla worker started", zap.String("schedule", w.cfg.SweepSchedule))
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (w *SlaWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("sla worker stopped")
}

func (w *SlaWorker) runSweep() {
	if !w.running.CompareAndSwap(false, true) {
		w.logger.Warn("sla sweep still running; skipping tick")
		return
	}
	defer w.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.SweepTimeout())
	defer cancel()

	updated, err := w.sla.UpdateTicketSlaStatus(ctx)
	if err != nil {
		w.logger.Error("sla sweep failed", zap.Error(err))
		return
	}
	w.logger.Debug("sla sweep tick", zap.Int("updated", updated))
}

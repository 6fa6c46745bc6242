package training

import (
	"context"
	"log/slog"
	"time"
)

// Worker runs the threshold controller periodically
type Worker struct {
	controller *Controller
	logger     *slog.Logger
	interval   time.Duration
}

// NewWorker creates a new retraining worker
func NewWorker(controller *Controller, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{
		controller: controller,
		logger:     logger,
		interval:   interval,
	}
}

// Run starts the worker loop
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("retraining worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("retraining worker stopped")
			return
		case <-ticker.C:
			w.retrain(ctx)
		}
	}
}

func (w *Worker) retrain(ctx context.Context) {
	cfg, err := w.controller.Retrain(ctx)
	if err != nil {
		w.logger.Error("retraining failed", "error", err)
		return
	}
	if cfg == nil {
		w.logger.Debug("retraining skipped, batch below threshold")
		return
	}

	w.logger.Info("new threshold configuration available for review",
		"version", cfg.Version,
		"accuracy", cfg.Accuracy,
	)
}

package worker

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const defaultInterval = 5 * time.Minute

type TaskCounter interface {
	Count(context.Context, task.Filter) (int64, error)
}

// OverdueWorker periodically counts tasks past their due date that are not
// completed and publishes the number as a gauge. Tasks are never modified.
type OverdueWorker struct {
	repo     TaskCounter
	interval time.Duration
	gauge    prometheus.Gauge
	now      func() time.Time
}

func NewOverdueWorker(repo TaskCounter, interval time.Duration, registry prometheus.Registerer) *OverdueWorker {
	if interval <= 0 {
		interval = defaultInterval
	}

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taskmanager_overdue_tasks",
		Help: "Number of tasks past their due date and not completed",
	})
	if registry != nil {
		registry.MustRegister(gauge)
	}

	return &OverdueWorker{
		repo:     repo,
		interval: interval,
		gauge:    gauge,
		now:      time.Now,
	}
}

// Start runs a check right away and then on every tick until ctx is done.
func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: overdue check started", zap.Duration("interval", w.interval))
	w.run(ctx)

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			logger.Info("Worker: overdue check stopping")
			return
		}
	}
}

func (w *OverdueWorker) run(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil {
		logger.Warn("Worker: overdue check failed", zap.Error(err))
	}
}

func (w *OverdueWorker) Check(ctx context.Context) (int64, error) {
	start := time.Now()

	count, err := w.repo.Count(ctx, task.Filter{}.Overdue(w.now()))
	if err != nil {
		return 0, fmt.Errorf("counting overdue tasks: %w", err)
	}
	w.gauge.Set(float64(count))

	logger.Info("Worker: overdue check finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int64("overdue", count))
	return count, nil
}

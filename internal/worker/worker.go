package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one independent unit of work, typically a full site crawl with its
// own browser session.
type Task func(ctx context.Context) error

// Pool runs named tasks with bounded concurrency
type Pool struct {
	Workers int
	Logger  *zap.Logger
}

// NewPool creates a new worker pool. Fewer than one worker means sequential.
func NewPool(workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		Workers: workers,
		Logger:  logger,
	}
}

// Run executes every task and returns the error of each failed one by name.
// A failing task never cancels the others; order is preserved when the pool
// has a single worker.
func (p *Pool) Run(ctx context.Context, names []string, tasks map[string]Task) map[string]error {
	var (
		mu     sync.Mutex
		failed = make(map[string]error)
	)

	var g errgroup.Group
	g.SetLimit(p.Workers)

	for i, name := range names {
		task, ok := tasks[name]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				failed[name] = err
				mu.Unlock()
				return nil
			}

			p.Logger.Info("task started", zap.String("task", name), zap.Int("index", i), zap.Int("tasks", len(names)))
			if err := task(ctx); err != nil {
				p.Logger.Error("task failed", zap.String("task", name), zap.Error(err))
				mu.Lock()
				failed[name] = err
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return failed
}

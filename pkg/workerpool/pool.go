// Package workerpool runs independent tasks with bounded parallelism.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Config configures the pool.
type Config struct {
	MaxConcurrent int // Maximum tasks in flight (default: 4)
}

// DefaultConfig returns the default pool settings.
func DefaultConfig() Config {
	return Config{MaxConcurrent: 4}
}

// Pool bounds how many tasks run at once. A single Pool may be shared by
// concurrent Process calls; each call gets its own semaphore.
type Pool struct {
	config Config
	logger *zap.Logger
}

// New creates a pool.
func New(config Config, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	return &Pool{
		config: config,
		logger: logger.Named("worker-pool"),
	}
}

// MaxConcurrent returns the configured parallelism.
func (p *Pool) MaxConcurrent() int {
	return p.config.MaxConcurrent
}

// Task is a unit of work.
type Task[T any] struct {
	ID      string                               // For logging
	Execute func(ctx context.Context) (T, error) // The work to run
}

// Result is the outcome of one task.
type Result[T any] struct {
	ID    string
	Index int // Position of the task in the submitted slice
	Value T
	Err   error
}

// Process runs every task and returns the results in submission order, so
// results[i] belongs to tasks[i]. A failing task does not stop the others.
// Tasks still waiting for a slot when ctx is cancelled get ctx.Err().
func Process[T any](
	ctx context.Context,
	pool *Pool,
	tasks []Task[T],
	onProgress func(completed, total int),
) []Result[T] {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]Result[T], len(tasks))
	done := make(chan int, len(tasks))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			defer func() { done <- i }()

			results[i] = Result[T]{ID: task.ID, Index: i}

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			}

			results[i].Value, results[i].Err = task.Execute(ctx)
			if results[i].Err != nil {
				pool.logger.Debug("Task failed",
					zap.String("task_id", task.ID),
					zap.Error(results[i].Err))
			}
		}(i, task)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for range done {
		completed++
		if onProgress != nil {
			onProgress(completed, len(tasks))
		}
	}

	return results
}

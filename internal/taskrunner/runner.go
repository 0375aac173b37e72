package taskrunner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"m4bind/internal/logging"
	"m4bind/internal/services"
)

// statusBuffer bounds the worker-to-coordinator channel.
const statusBuffer = 100

// Runner dispatches tasks to a fixed worker pool.
type Runner struct {
	workers    int
	executor   Executor
	logger     *slog.Logger
	newDisplay func(total int) Display
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithDisplay forces a specific display instead of the terminal-based choice.
func WithDisplay(d Display) Option {
	return func(r *Runner) {
		r.newDisplay = func(int) Display { return d }
	}
}

// NewRunner builds a Runner. workers <= 0 means one worker per CPU.
func NewRunner(executor Executor, workers int, logger *slog.Logger, opts ...Option) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	r := &Runner{
		workers:  workers,
		executor: executor,
		logger:   logging.NewComponentLogger(logger, "taskrunner"),
	}
	r.newDisplay = func(int) Display { return NewDisplay(r.logger) }
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Workers returns the configured pool size.
func (r *Runner) Workers() int { return r.workers }

type job struct {
	index int
	task  Task
}

// Process runs tasks and blocks until all of them have ended. An empty list
// returns nil without starting workers or a display.
func (r *Runner) Process(ctx context.Context, tasks []Task) *Summary {
	if len(tasks) == 0 {
		return nil
	}

	workers := min(r.workers, len(tasks))
	input := make(chan job, workers)
	status := make(chan Event, statusBuffer)

	display := r.newDisplay(len(tasks))
	display.Start(tasks)
	defer display.Stop()

	r.logger.Debug("processing tasks",
		logging.Int("tasks", len(tasks)),
		logging.Int("workers", workers),
	)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range input {
				r.work(ctx, j, status)
			}
		}()
	}

	summary := &Summary{Total: len(tasks)}
	record := func(ev Event) {
		summary.observe(ev)
		display.Update(ev)
	}

	for next := 0; next < len(tasks); {
		select {
		case input <- job{index: next, task: tasks[next]}:
			next++
		case ev := <-status:
			record(ev)
		}
	}
	close(input)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for waiting := true; waiting; {
		select {
		case ev := <-status:
			record(ev)
		case <-done:
			waiting = false
		}
	}
	for {
		select {
		case ev := <-status:
			record(ev)
		default:
			if len(summary.Failed) > 0 {
				r.logger.Warn("tasks failed",
					logging.Int("failed", len(summary.Failed)),
					logging.Int("total", summary.Total),
				)
			}
			return summary
		}
	}
}

func (r *Runner) work(ctx context.Context, j job, status chan<- Event) {
	status <- Event{Index: j.index, Task: j.task, Kind: EventStarted}

	last := -1.0
	report := func(percent float64) {
		percent = max(0, min(100, percent))
		if percent <= last {
			return
		}
		last = percent
		status <- Event{Index: j.index, Task: j.task, Kind: EventProgress, Percent: percent}
	}

	if err := r.execute(ctx, j.task, report); err != nil {
		status <- Event{
			Index: j.index,
			Task:  j.task,
			Kind:  EventFailed,
			Err:   services.Wrap(services.ErrTaskFailure, "taskrunner", j.task.Name, "", err),
		}
		return
	}
	status <- Event{Index: j.index, Task: j.task, Kind: EventFinished, Percent: 100}
}

func (r *Runner) execute(ctx context.Context, task Task, report func(float64)) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	if r.executor == nil {
		return fmt.Errorf("no executor configured")
	}
	return r.executor.Execute(ctx, task, report)
}

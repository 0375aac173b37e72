package taskrunner

import (
	"context"
	"fmt"
	"strings"

	"m4bind/internal/media/ffmpeg"
	"m4bind/internal/services"
)

// Task is one external command invocation. Name is shown on the display.
type Task struct {
	Name string
	Args []string
}

// EventKind classifies task lifecycle events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventProgress
	EventFinished
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventFinished:
		return "finished"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a status message emitted by a worker. Index is the task's
// position in the list passed to Process.
type Event struct {
	Index   int
	Task    Task
	Kind    EventKind
	Percent float64
	Err     error
}

// Terminal reports whether the event ends its task.
func (e Event) Terminal() bool {
	return e.Kind == EventFinished || e.Kind == EventFailed
}

// Executor runs a single task, reporting percentages through onProgress.
type Executor interface {
	Execute(ctx context.Context, task Task, onProgress func(percent float64)) error
}

// CommandRunner is the subset of ffmpeg.Runner used by FFmpegExecutor.
type CommandRunner interface {
	Run(ctx context.Context, args []string, onProgress ffmpeg.ProgressFunc) (string, error)
}

// FFmpegExecutor runs task arguments through ffmpeg.
type FFmpegExecutor struct {
	Runner CommandRunner
}

// Execute implements Executor.
func (e FFmpegExecutor) Execute(ctx context.Context, task Task, onProgress func(percent float64)) error {
	if e.Runner == nil {
		return services.Wrap(services.ErrConfiguration, "taskrunner", task.Name, "ffmpeg runner not configured", nil)
	}
	_, err := e.Runner.Run(ctx, task.Args, ffmpeg.ProgressFunc(onProgress))
	return err
}

// Failure pairs a task with the error it ended with.
type Failure struct {
	Task Task
	Err  error
}

// Summary aggregates the outcome of a Process call.
type Summary struct {
	Total     int
	Succeeded int
	Failed    []Failure
}

func (s *Summary) observe(ev Event) {
	switch ev.Kind {
	case EventFinished:
		s.Succeeded++
	case EventFailed:
		s.Failed = append(s.Failed, Failure{Task: ev.Task, Err: ev.Err})
	}
}

// FailedNames lists the names of failed tasks in completion order.
func (s *Summary) FailedNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Failed))
	for _, f := range s.Failed {
		names = append(names, f.Task.Name)
	}
	return names
}

// Err returns nil when every task succeeded, otherwise an error wrapping
// services.ErrTaskFailure that names the failed tasks. The first failure's
// cause is preserved for errors.Is.
func (s *Summary) Err() error {
	if s == nil || len(s.Failed) == 0 {
		return nil
	}
	msg := fmt.Sprintf("%d of %d tasks failed (%s)", len(s.Failed), s.Total, strings.Join(s.FailedNames(), ", "))
	return services.Wrap(services.ErrTaskFailure, "taskrunner", "process", msg, s.Failed[0].Err)
}

package taskrunner

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"

	"m4bind/internal/logging"
)

// Display renders task lifecycle events. Update is only called from the
// coordinator goroutine.
type Display interface {
	Start(tasks []Task)
	Update(ev Event)
	Stop()
}

// NewDisplay returns live progress bars when stdout is a terminal and
// log lines otherwise.
func NewDisplay(logger *slog.Logger) Display {
	if isTerminal(os.Stdout) {
		return NewProgressDisplay(os.Stdout)
	}
	return NewLogDisplay(logger)
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ProgressDisplay draws one bar per task.
type ProgressDisplay struct {
	out      io.Writer
	writer   progress.Writer
	trackers []*progress.Tracker
	rendered sync.WaitGroup
}

// NewProgressDisplay renders bars to out.
func NewProgressDisplay(out io.Writer) *ProgressDisplay {
	return &ProgressDisplay{out: out}
}

func (d *ProgressDisplay) Start(tasks []Task) {
	w := progress.NewWriter()
	w.SetOutputWriter(d.out)
	w.SetAutoStop(false)
	w.SetTrackerLength(30)
	w.SetUpdateFrequency(100 * time.Millisecond)
	w.Style().Visibility.ETA = false
	w.Style().Visibility.Value = false

	d.trackers = make([]*progress.Tracker, len(tasks))
	for i, task := range tasks {
		tracker := &progress.Tracker{Message: task.Name, Total: 100, Units: progress.UnitsDefault}
		d.trackers[i] = tracker
		w.AppendTracker(tracker)
	}
	d.writer = w

	d.rendered.Add(1)
	go func() {
		defer d.rendered.Done()
		w.Render()
	}()
}

func (d *ProgressDisplay) Update(ev Event) {
	if ev.Index < 0 || ev.Index >= len(d.trackers) {
		return
	}
	tracker := d.trackers[ev.Index]
	switch ev.Kind {
	case EventProgress:
		tracker.SetValue(int64(ev.Percent))
	case EventFinished:
		tracker.SetValue(100)
		tracker.MarkAsDone()
	case EventFailed:
		tracker.UpdateMessage(ev.Task.Name + " (failed)")
		tracker.MarkAsErrored()
	}
}

func (d *ProgressDisplay) Stop() {
	if d.writer == nil {
		return
	}
	// Stop is ignored by the writer until Render has begun.
	for !d.writer.IsRenderInProgress() {
		time.Sleep(5 * time.Millisecond)
	}
	d.writer.Stop()
	d.rendered.Wait()
}

// LogDisplay reports task events as structured log lines, sampling progress
// into 25% buckets per task.
type LogDisplay struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	total   int
	ended   int
}

// NewLogDisplay writes events to logger.
func NewLogDisplay(logger *slog.Logger) *LogDisplay {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogDisplay{logger: logger}
}

func (d *LogDisplay) Start(tasks []Task) {
	d.total = len(tasks)
	d.ended = 0
	d.sampler = logging.NewProgressSampler(25)
}

func (d *LogDisplay) Update(ev Event) {
	attrs := []logging.Attr{
		logging.String(logging.FieldTask, ev.Task.Name),
		logging.String(logging.FieldEventType, "task_"+ev.Kind.String()),
	}
	switch ev.Kind {
	case EventStarted:
		d.logger.Info("task started", logging.Args(attrs...)...)
	case EventProgress:
		if !d.sampler.ShouldLog(ev.Percent, strconv.Itoa(ev.Index)) {
			return
		}
		attrs = append(attrs, logging.Float64("percent", ev.Percent))
		d.logger.Debug("task progress", logging.Args(attrs...)...)
	case EventFinished:
		d.sampler.Forget(strconv.Itoa(ev.Index))
		d.ended++
		attrs = append(attrs, logging.Int("done", d.ended), logging.Int("total", d.total))
		d.logger.Info("task finished", logging.Args(attrs...)...)
	case EventFailed:
		d.ended++
		attrs = append(attrs,
			logging.Error(ev.Err),
			logging.String(logging.FieldImpact, "task output missing; later steps using it will fail"),
		)
		logging.ErrorWithContext(d.logger, "task failed", "task_failed", attrs...)
	}
}

func (d *LogDisplay) Stop() {}

package worker

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType is the kind of notification emitted for a job.
type EventType string

const (
	EventStarted  EventType = "started"
	EventFinished EventType = "finished"
	EventError    EventType = "error"
)

// Event is a job notification. Finished carries the output and page count,
// Error carries a human-readable message.
type Event struct {
	Type    EventType `json:"status"`
	JobID   string    `json:"job_id"`
	Output  string    `json:"output,omitempty"`
	Pages   int       `json:"pages,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Terminal reports whether e ends its job's stream.
func (e Event) Terminal() bool {
	return e.Type == EventFinished || e.Type == EventError
}

// Job is one merge request.
type Job struct {
	ID          string
	Inputs      []string
	Output      string
	SubmittedAt time.Time
}

// NewJob creates a job with a fresh ID and its own copy of inputs.
func NewJob(inputs []string, output string) Job {
	return Job{
		ID:          uuid.NewString(),
		Inputs:      slices.Clone(inputs),
		Output:      output,
		SubmittedAt: time.Now(),
	}
}

// Executor performs a merge synchronously.
type Executor interface {
	Merge(inputs []string, output string) (Result, error)
}

// Runner executes at most one job at a time on a background goroutine.
type Runner struct {
	exec   Executor
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRunner creates a single-slot runner.
func NewRunner(exec Executor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{exec: exec, logger: logger}
}

// Busy reports whether a job is in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Submit starts job in the background. The returned channel yields a started
// event followed by exactly one finished or error event and is then closed.
// ErrBusy is returned while another job is running.
func (r *Runner) Submit(job Job) (<-chan Event, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.running = true
	r.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.Inputs = slices.Clone(job.Inputs)

	events := make(chan Event, 2)
	go r.run(job, events)
	return events, nil
}

func (r *Runner) run(job Job, events chan<- Event) {
	defer close(events)

	mergeInFlight.Inc()
	events <- Event{Type: EventStarted, JobID: job.ID, Time: time.Now()}
	r.logger.Info("merge started", "job_id", job.ID, "inputs", len(job.Inputs), "output", job.Output)

	res, err := r.execute(job)
	mergeInFlight.Dec()

	// The slot is released before the terminal event so a consumer reacting
	// to it can submit the next job immediately.
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	if err != nil {
		mergeJobsTotal.WithLabelValues("error").Inc()
		r.logger.Error("merge failed", "job_id", job.ID, "error", err)
		events <- Event{Type: EventError, JobID: job.ID, Message: err.Error(), Time: time.Now()}
		return
	}

	mergeJobsTotal.WithLabelValues("success").Inc()
	mergeDuration.Observe(res.Duration.Seconds())
	mergePages.Observe(float64(res.Pages))
	events <- Event{Type: EventFinished, JobID: job.ID, Output: res.Output, Pages: res.Pages, Time: time.Now()}
}

func (r *Runner) execute(job Job) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("merge failed unexpectedly: %v", p)
		}
	}()
	return r.exec.Merge(job.Inputs, job.Output)
}

// Await drains events and returns the terminal event.
func Await(events <-chan Event) Event {
	var last Event
	for ev := range events {
		last = ev
	}
	return last
}

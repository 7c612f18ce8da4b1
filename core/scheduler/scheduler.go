package scheduler

import (
	"context"
	"log"
	"strings"
	"sync"

	"furniture-editor/core/executor"
	"furniture-editor/core/models"
	"furniture-editor/core/monitoring"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyPrompt is returned when Run gets a blank furniture description
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrNoJobs is returned when Run is called on an empty queue
	ErrNoJobs = errors.New("no images to process")
	// ErrAlreadyRunning is returned when a second Run starts before the first ends
	ErrAlreadyRunning = errors.New("processing already in progress")
)

// Relay submits one image job and returns the relay's answer
type Relay interface {
	ProcessImage(ctx context.Context, job *models.ImageJob, prompt string) (*executor.ProcessResponse, error)
}

// RunResult summarises one processing run
type RunResult struct {
	Total     int
	Completed int
	Failed    int
	Discarded int // removed from the queue before their result was recorded
}

// Scheduler drives pending jobs through the relay one at a time
type Scheduler struct {
	queue    *JobQueue
	relay    Relay
	reporter monitoring.Reporter

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new scheduler
func NewScheduler(queue *JobQueue, relay Relay, reporter monitoring.Reporter) *Scheduler {
	if reporter == nil {
		reporter = monitoring.ReporterFunc(func(monitoring.Progress) {})
	}
	return &Scheduler{
		queue:    queue,
		relay:    relay,
		reporter: reporter,
	}
}

// Running reports whether a run is in progress
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Run processes every pending job in upload order, strictly one request at a
// time. Progress is reported after each job settles. No job is retried.
func (s *Scheduler) Run(ctx context.Context, prompt string) (*RunResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if s.queue.Len() == 0 {
		return nil, ErrNoJobs
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ids := s.queue.PendingIDs()
	result := &RunResult{Total: len(ids)}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		s.processJob(ctx, id, prompt, result)
		s.reporter.Report(monitoring.NewProgress(i+1, len(ids)))
	}

	return result, nil
}

// processJob submits a single job and records its outcome
func (s *Scheduler) processJob(ctx context.Context, id, prompt string, result *RunResult) {
	job, err := s.queue.Start(id)
	if err != nil {
		// Removed before its turn
		log.Printf("Skipping job %s: %v", id, err)
		result.Discarded++
		return
	}

	log.Printf("Processing job %s (%s)", job.ID, job.Name)

	resp, err := s.relay.ProcessImage(ctx, job, prompt)
	if err != nil {
		log.Printf("Failed to process job %s: %v", job.ID, err)
		s.record(s.queue.Fail(job.ID, err.Error()), job.ID, &result.Failed, result)
		return
	}

	s.record(s.queue.Complete(job.ID, resp.ProcessedImageURL, resp.Description), job.ID, &result.Completed, result)
}

// record counts the outcome, or a discard when the job was removed mid-flight
func (s *Scheduler) record(err error, id string, counter *int, result *RunResult) {
	if err == nil {
		*counter++
		return
	}
	if errors.Is(err, ErrJobNotFound) {
		log.Printf("Discarding result for removed job %s", id)
	} else {
		log.Printf("Failed to record result for job %s: %v", id, err)
	}
	result.Discarded++
}

package scheduler

import (
	"strings"
	"sync"
	"time"

	"furniture-editor/core/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MaxJobs is the most image jobs a queue holds at once
const MaxJobs = 30

var (
	// ErrJobNotFound is returned when a job is no longer in the queue
	ErrJobNotFound = errors.New("job not found")
	// ErrAnotherProcessing is returned when a second job would enter processing
	ErrAnotherProcessing = errors.New("another job is already processing")
)

// Upload is one file offered to the queue by a picker, a drop or the CLI
type Upload struct {
	Name     string
	MimeType string
	Source   string
	Data     []byte
}

// IsImage reports whether the upload carries an image MIME type
func (u Upload) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(u.MimeType), "image/")
}

// JobQueue is the ordered list of image jobs for one session
type JobQueue struct {
	jobs   []*models.ImageJob
	events map[string][]models.JobEvent
	limit  int
	now    func() time.Time
	mu     sync.Mutex
}

// NewJobQueue creates a queue capped at MaxJobs
func NewJobQueue() *JobQueue {
	return NewJobQueueWithLimit(MaxJobs)
}

// NewJobQueueWithLimit creates a queue with a custom cap
func NewJobQueueWithLimit(limit int) *JobQueue {
	if limit <= 0 {
		limit = MaxJobs
	}
	return &JobQueue{
		jobs:   make([]*models.ImageJob, 0, limit),
		events: make(map[string][]models.JobEvent),
		limit:  limit,
		now:    time.Now,
	}
}

// Add appends image uploads as pending jobs until the queue is full.
// Non-image uploads and anything beyond the cap are dropped silently.
// It returns copies of the jobs that were added.
func (q *JobQueue) Add(uploads []Upload) []*models.ImageJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	var added []*models.ImageJob
	for _, upload := range uploads {
		if len(q.jobs) >= q.limit {
			break
		}
		if !upload.IsImage() {
			continue
		}

		now := q.now()
		job := &models.ImageJob{
			ID:          uuid.New().String(),
			Name:        upload.Name,
			MimeType:    upload.MimeType,
			Data:        upload.Data,
			OriginalURL: upload.Source,
			Status:      models.JobStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		q.jobs = append(q.jobs, job)
		q.recordEvent(job.ID, nil, models.JobStatusPending, "uploaded")
		added = append(added, job.Clone())
	}

	return added
}

// Remove drops a job at any time, including while it is processing
func (q *JobQueue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return false
	}
	q.jobs = append(q.jobs[:idx], q.jobs[idx+1:]...)
	delete(q.events, id)
	return true
}

// Get returns a copy of the job with the given ID
func (q *JobQueue) Get(id string) (*models.ImageJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	return q.jobs[idx].Clone(), true
}

// List returns copies of all jobs in upload order
func (q *JobQueue) List() []*models.ImageJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*models.ImageJob, len(q.jobs))
	for i, job := range q.jobs {
		out[i] = job.Clone()
	}
	return out
}

// PendingIDs returns the IDs of pending jobs in upload order
func (q *JobQueue) PendingIDs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ids []string
	for _, job := range q.jobs {
		if job.Status == models.JobStatusPending {
			ids = append(ids, job.ID)
		}
	}
	return ids
}

// Len returns the number of jobs in the queue
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Remaining returns how many more jobs the queue accepts
func (q *JobQueue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.limit - len(q.jobs)
}

// Start moves a pending job to processing. Only one job may be processing.
func (q *JobQueue) Start(id string) (*models.ImageJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return nil, errors.Wrapf(ErrJobNotFound, "start %s", id)
	}
	for _, job := range q.jobs {
		if job.Status == models.JobStatusProcessing && job.ID != id {
			return nil, errors.Wrapf(ErrAnotherProcessing, "start %s while %s", id, job.ID)
		}
	}

	job := q.jobs[idx]
	if err := q.transition(job, models.JobStatusProcessing, "submitted"); err != nil {
		return nil, err
	}
	return job.Clone(), nil
}

// Complete records a successful result. A job removed in the meantime is
// left out and ErrJobNotFound is returned.
func (q *JobQueue) Complete(id, processedURL, description string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return errors.Wrapf(ErrJobNotFound, "complete %s", id)
	}

	job := q.jobs[idx]
	if err := q.transition(job, models.JobStatusCompleted, "relay_succeeded"); err != nil {
		return err
	}
	job.ProcessedURL = processedURL
	job.Description = description
	return nil
}

// Fail records a failure message on the job
func (q *JobQueue) Fail(id, message string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := q.indexOf(id)
	if idx < 0 {
		return errors.Wrapf(ErrJobNotFound, "fail %s", id)
	}

	job := q.jobs[idx]
	if err := q.transition(job, models.JobStatusError, "relay_failed"); err != nil {
		return err
	}
	job.Error = message
	return nil
}

// Completed returns copies of the completed jobs that carry a result
func (q *JobQueue) Completed() []*models.ImageJob {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []*models.ImageJob
	for _, job := range q.jobs {
		if job.Status == models.JobStatusCompleted && job.ProcessedURL != "" {
			out = append(out, job.Clone())
		}
	}
	return out
}

// Counts returns the number of jobs per status
func (q *JobQueue) Counts() map[models.JobStatus]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	counts := make(map[models.JobStatus]int)
	for _, job := range q.jobs {
		counts[job.Status]++
	}
	return counts
}

// Events returns the transition history of a job
func (q *JobQueue) Events(id string) []models.JobEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	events := q.events[id]
	out := make([]models.JobEvent, len(events))
	copy(out, events)
	return out
}

// transition validates and applies a status change. Caller holds the lock.
func (q *JobQueue) transition(job *models.ImageJob, to models.JobStatus, reason string) error {
	from := job.Status
	if err := models.ValidateTransition(from, to); err != nil {
		return errors.Wrapf(err, "job %s", job.ID)
	}
	job.Status = to
	job.UpdatedAt = q.now()
	q.recordEvent(job.ID, &from, to, reason)
	return nil
}

func (q *JobQueue) recordEvent(id string, from *models.JobStatus, to models.JobStatus, reason string) {
	q.events[id] = append(q.events[id], models.JobEvent{
		JobID:      id,
		At:         q.now(),
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
	})
}

func (q *JobQueue) indexOf(id string) int {
	for i, job := range q.jobs {
		if job.ID == id {
			return i
		}
	}
	return -1
}

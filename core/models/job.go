package models

import (
	"time"

	"github.com/pkg/errors"
)

// ImageJob represents one uploaded room photo through its processing lifecycle
type ImageJob struct {
	ID           string
	Name         string // Original filename, used to derive export names
	MimeType     string
	Data         []byte // Original uploaded bytes
	OriginalURL  string // Where the original came from (local path for the CLI)
	ProcessedURL string // Result reference returned by the relay
	Description  string // Model text returned alongside the result
	Status       JobStatus
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobStatus represents the current status of an image job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// ErrInvalidTransition is returned when a status change would move a job backwards
var ErrInvalidTransition = errors.New("invalid status transition")

// allowedTransitions lists the only forward moves a job can make
var allowedTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusProcessing},
	JobStatusProcessing: {JobStatusCompleted, JobStatusError},
}

// CanTransition reports whether a job may move from one status to another
func CanTransition(from, to JobStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition wrapped with both statuses
// when the move is not allowed
func ValidateTransition(from, to JobStatus) error {
	if !CanTransition(from, to) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", from, to)
	}
	return nil
}

// IsSettled reports whether the job has reached a terminal status
func (j *ImageJob) IsSettled() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusError
}

// Clone returns a copy that shares no mutable state with j, apart from Data
// which is never written after upload
func (j *ImageJob) Clone() *ImageJob {
	c := *j
	return &c
}

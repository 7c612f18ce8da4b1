package models

import "time"

// JobEvent records a state transition of an image job
type JobEvent struct {
	JobID      string
	At         time.Time
	FromStatus *JobStatus
	ToStatus   JobStatus
	Reason     string
}

package domain

import (
	"strings"
	"time"
)

// JobStatus enumerates the lifecycle states of a generation job.
type JobStatus string

const (
	JobStatusGenerating JobStatus = "generating"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// GenerationJob tracks one request to produce a video artifact, from
// submission to terminal state. ResultURL is set only on completion and
// ErrorMessage only on failure.
type GenerationJob struct {
	ID             string
	ExternalTaskID string
	UserID         string
	Prompt         string
	Duration       int
	Platform       string
	Format         string
	Status         JobStatus
	Progress       int
	ResultURL      string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskState is the closed set of states a vendor task status maps to.
// Wire values are parsed exactly once at the boundary; anything outside
// the known vocabulary becomes StateUnknown instead of silently passing
// for in-progress.
type TaskState int

const (
	StateUnknown TaskState = iota
	StateInProgress
	StateCompleted
	StateFailed
)

func (s TaskState) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ParseTaskState maps a raw vendor status string onto the closed enum.
func ParseTaskState(raw string) TaskState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCEEDED", "COMPLETED", "SUCCESS":
		return StateCompleted
	case "FAILED", "ERROR":
		return StateFailed
	case "PROCESSING", "PENDING", "GENERATING", "RUNNING", "QUEUED":
		return StateInProgress
	}
	return StateUnknown
}

// ClampProgress bounds a reported progress value to [0, 100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

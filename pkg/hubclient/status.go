package hubclient

import "strings"

// Status is the closed set of job states the client exposes. Server
// values outside the known vocabulary map to StatusUnknown so new wire
// states can never masquerade as progress or completion.
type Status int

const (
	StatusUnknown Status = iota
	StatusGenerating
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusGenerating:
		return "generating"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether polling should stop at this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus maps a server status string onto the closed enum.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "generating", "in_progress", "processing", "pending", "queued":
		return StatusGenerating
	case "completed", "succeeded":
		return StatusCompleted
	case "failed", "error":
		return StatusFailed
	case "cancelled", "canceled":
		return StatusCancelled
	}
	return StatusUnknown
}

package domain

import "testing"

func TestParseTaskState(t *testing.T) {
	testCases := []struct {
		raw  string
		want TaskState
	}{
		{"SUCCEEDED", StateCompleted},
		{"completed", StateCompleted},
		{"FAILED", StateFailed},
		{"failed", StateFailed},
		{"PROCESSING", StateInProgress},
		{"PENDING", StateInProgress},
		{"generating", StateInProgress},
		{" running ", StateInProgress},
		{"", StateUnknown},
		{"BANANA", StateUnknown},
		{"succeeded-ish", StateUnknown},
	}
	for _, tc := range testCases {
		if got := ParseTaskState(tc.raw); got != tc.want {
			t.Errorf("ParseTaskState(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for _, s := range []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if JobStatusGenerating.Terminal() {
		t.Error("generating should not be terminal")
	}
}

func TestClampProgress(t *testing.T) {
	testCases := []struct{ in, want int }{
		{-5, 0},
		{0, 0},
		{40, 40},
		{100, 100},
		{250, 100},
	}
	for _, tc := range testCases {
		if got := ClampProgress(tc.in); got != tc.want {
			t.Errorf("ClampProgress(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

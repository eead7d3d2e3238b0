package video

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creationhub/internal/domain"
)

func TestStartGeneration(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"task_id":"t1"}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	taskID, err := client.StartGeneration(context.Background(), StartRequest{Prompt: "a red bicycle", Duration: 5})
	if err != nil {
		t.Fatalf("StartGeneration returned error: %v", err)
	}
	if taskID != "t1" {
		t.Fatalf("taskID = %q, want t1", taskID)
	}
	if gotPath != "/videos/generations" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("auth = %q", gotAuth)
	}
}

func TestStartGenerationRejectsShortPromptWithoutNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	if _, err := client.StartGeneration(context.Background(), StartRequest{Prompt: " ab "}); err == nil {
		t.Fatal("expected validation error")
	}
	if calls != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
}

func TestStartGenerationErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited","code":"429"}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	_, err := client.StartGeneration(context.Background(), StartRequest{Prompt: "a red bicycle"})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "rate limited"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q should mention %q", err.Error(), want)
	}
}

func TestStartGenerationNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	_, err := client.StartGeneration(context.Background(), StartRequest{Prompt: "a red bicycle"})
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "http 502"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q should mention %q", err.Error(), want)
	}
}

func TestTaskStatusParsing(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		wantState    domain.TaskState
		wantProgress *int
		wantURL      string
	}{
		{"processing with progress", `{"status":"PROCESSING","progress":40}`, domain.StateInProgress, intPtr(40), ""},
		{"succeeded", `{"status":"SUCCEEDED","video_url":"https://x/v1.mp4"}`, domain.StateCompleted, nil, "https://x/v1.mp4"},
		{"failed", `{"status":"FAILED","error_message":"boom"}`, domain.StateFailed, nil, ""},
		{"unknown status", `{"status":"SOMETHING_NEW"}`, domain.StateUnknown, nil, ""},
		{"overflowing progress clamped", `{"status":"generating","progress":250}`, domain.StateInProgress, intPtr(100), ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
			res, err := client.TaskStatus(context.Background(), "t1")
			if err != nil {
				t.Fatalf("TaskStatus returned error: %v", err)
			}
			if res.State != tc.wantState {
				t.Fatalf("State = %v, want %v", res.State, tc.wantState)
			}
			if (res.Progress == nil) != (tc.wantProgress == nil) {
				t.Fatalf("Progress = %v, want %v", res.Progress, tc.wantProgress)
			}
			if res.Progress != nil && *res.Progress != *tc.wantProgress {
				t.Fatalf("Progress = %d, want %d", *res.Progress, *tc.wantProgress)
			}
			if res.VideoURL != tc.wantURL {
				t.Fatalf("VideoURL = %q, want %q", res.VideoURL, tc.wantURL)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

package hubclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxUnknown   = 5
	minPromptLength     = 3
)

// ErrInvalidPrompt is returned before any network call when the prompt
// fails local validation.
var ErrInvalidPrompt = errors.New("hubclient: invalid prompt")

// Options configures the client.
type Options struct {
	BaseURL      string
	Token        string
	HTTPClient   *http.Client
	PollInterval time.Duration
	// MaxUnknown bounds how many consecutive unknown statuses are
	// tolerated before the job is treated as failed.
	MaxUnknown int
}

// Job identifies one submitted generation.
type Job struct {
	ID     string
	TaskID string
}

// Update is one observed change of the tracked job.
type Update struct {
	JobID        string
	Status       Status
	Progress     int
	ResultURL    string
	ErrorMessage string
	Err          error
}

// State is a point-in-time snapshot of the client.
type State struct {
	Job          Job
	IsGenerating bool
	Status       Status
	Progress     int
	ResultURL    string
	ErrorMessage string
	Err          error
}

// Client drives the generate-then-poll lifecycle against the hub API.
// One job is tracked at a time; starting a new generation cancels the
// previous poll.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	pollInterval time.Duration
	maxUnknown   int

	mu      sync.Mutex
	state   State
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	updates chan Update
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		return nil, errors.New("hubclient: base URL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxUnknown := opts.MaxUnknown
	if maxUnknown <= 0 {
		maxUnknown = defaultMaxUnknown
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      base,
		token:        opts.Token,
		pollInterval: interval,
		maxUnknown:   maxUnknown,
		updates:      make(chan Update, 16),
	}, nil
}

// Updates delivers job state changes. The channel is shared across
// generations; each Update carries its JobID.
func (c *Client) Updates() <-chan Update {
	return c.updates
}

// State returns the current snapshot.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

type submitPayload struct {
	VideoID string `json:"videoId"`
	TaskID  string `json:"taskId"`
}

// Generate validates locally, submits the job, and starts polling until
// a terminal state. Any generation already in flight is cancelled first.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (Job, error) {
	if len(strings.TrimSpace(req.Prompt)) < minPromptLength {
		return Job{}, fmt.Errorf("%w: prompt must be at least %d characters", ErrInvalidPrompt, minPromptLength)
	}

	c.Cancel()

	body, err := json.Marshal(req.payload())
	if err != nil {
		return Job{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/video/generate", bytes.NewReader(body))
	if err != nil {
		return Job{}, err
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Job{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Job{}, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return Job{}, parseAPIError(resp.StatusCode, raw)
	}
	var out submitPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return Job{}, fmt.Errorf("hubclient: decode response: %w", err)
	}
	if out.VideoID == "" {
		return Job{}, errors.New("hubclient: missing video id")
	}
	job := Job{ID: out.VideoID, TaskID: out.TaskID}

	pollCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.cancel = cancel
	c.done = done
	c.state = State{Job: job, IsGenerating: true, Status: StatusGenerating}
	c.mu.Unlock()

	c.emit(Update{JobID: job.ID, Status: StatusGenerating})
	go c.poll(pollCtx, gen, job, done)
	return job, nil
}

// Cancel stops the active poll, if any, and tells the server. It is
// silent and idempotent: cancelling with nothing running is a no-op,
// and any in-flight status response is discarded.
func (c *Client) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	job := c.state.Job
	running := c.state.IsGenerating
	// invalidate the active generation so a poll result that already
	// cleared the context check cannot land after this point
	c.gen++
	c.cancel = nil
	c.done = nil
	if running {
		c.state = State{Job: job, Status: StatusCancelled, Progress: 0}
	}
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}

	// best-effort server-side cancel
	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.statusURL(job), nil)
	if err == nil {
		c.setHeaders(httpReq)
		if resp, err := c.httpClient.Do(httpReq); err == nil {
			resp.Body.Close()
		}
	}

	if running {
		c.emit(Update{JobID: job.ID, Status: StatusCancelled, Progress: 0})
	}
}

// Close cancels any running poll and releases the update channel.
func (c *Client) Close() {
	c.Cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updates != nil {
		close(c.updates)
		c.updates = nil
	}
}

type statusPayload struct {
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	VideoURL     string `json:"videoUrl"`
	ErrorMessage string `json:"errorMessage"`
}

// poll queries immediately, then on every tick. The loop body is
// sequential, so at most one status request is ever in flight. Every
// state write is tagged with gen so results from a superseded
// generation are dropped rather than applied.
func (c *Client) poll(ctx context.Context, gen uint64, job Job, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	unknownStreak := 0
	for {
		payload, err := c.fetchStatus(ctx, job)
		if ctx.Err() != nil {
			// cancelled mid-flight: drop whatever came back
			return
		}
		if err != nil {
			// a poll failure other than cancellation is terminal, not retried
			c.finish(gen, job, Update{JobID: job.ID, Status: StatusFailed, ErrorMessage: err.Error(), Err: err})
			return
		}

		status := ParseStatus(payload.Status)
		if status == StatusUnknown {
			unknownStreak++
			if unknownStreak >= c.maxUnknown {
				c.finish(gen, job, Update{
					JobID:        job.ID,
					Status:       StatusFailed,
					ErrorMessage: fmt.Sprintf("unrecognized status %q repeated %d times", payload.Status, unknownStreak),
				})
				return
			}
		} else {
			unknownStreak = 0
		}

		switch status {
		case StatusCompleted:
			c.finish(gen, job, Update{JobID: job.ID, Status: StatusCompleted, Progress: 100, ResultURL: payload.VideoURL})
			return
		case StatusFailed:
			msg := payload.ErrorMessage
			if msg == "" {
				msg = "generation failed"
			}
			c.finish(gen, job, Update{JobID: job.ID, Status: StatusFailed, ErrorMessage: msg})
			return
		case StatusCancelled:
			c.finish(gen, job, Update{JobID: job.ID, Status: StatusCancelled, Progress: 0})
			return
		case StatusGenerating:
			progress := clampProgress(payload.Progress)
			if c.setProgress(gen, progress) {
				c.emit(Update{JobID: job.ID, Status: StatusGenerating, Progress: progress})
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchStatus(ctx context.Context, job Job) (*statusPayload, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL(job), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseAPIError(resp.StatusCode, raw)
	}
	var out statusPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("hubclient: decode status: %w", err)
	}
	return &out, nil
}

// finish records a terminal result, unless the generation it belongs
// to has been cancelled or replaced in the meantime.
func (c *Client) finish(gen uint64, job Job, update Update) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = State{
		Job:          job,
		IsGenerating: false,
		Status:       update.Status,
		Progress:     update.Progress,
		ResultURL:    update.ResultURL,
		ErrorMessage: update.ErrorMessage,
	}
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()
	c.emit(update)
}

func (c *Client) setProgress(gen uint64, progress int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.state.Progress = progress
	return true
}

func (c *Client) emit(update Update) {
	c.mu.Lock()
	ch := c.updates
	c.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
		// slow consumer: drop the oldest update to keep the latest state visible
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- update:
		default:
		}
	}
}

func (c *Client) statusURL(job Job) string {
	q := url.Values{}
	q.Set("videoId", job.ID)
	if job.TaskID != "" {
		q.Set("taskId", job.TaskID)
	}
	return c.baseURL + "/api/video/generate?" + q.Encode()
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

type apiErrorBody struct {
	Error json.RawMessage `json:"error"`
}

// parseAPIError tolerates both error shapes the hub has used: a plain
// {"error":"msg"} string and the structured {"error":{code,message}}
// envelope, as well as empty or non-JSON bodies.
func parseAPIError(status int, raw []byte) error {
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Error) > 0 {
		var msg string
		if json.Unmarshal(body.Error, &msg) == nil && msg != "" {
			return fmt.Errorf("hubclient: %s", msg)
		}
		var structured struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Error, &structured) == nil && structured.Message != "" {
			return fmt.Errorf("hubclient: %s (%s)", structured.Message, structured.Code)
		}
	}
	return fmt.Errorf("hubclient: http %d", status)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

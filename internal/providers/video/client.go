package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"creationhub/internal/domain"
)

// Options configures the vendor video generation client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the hosted text/image-to-video API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.klingai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "kling-v1"
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		model:      model,
	}
}

// StartRequest carries the parameters of one video generation attempt.
type StartRequest struct {
	Prompt   string
	Duration int
	Platform string
	Format   string
	ImageURL string
}

type startPayload struct {
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration,omitempty"`
	Platform string `json:"platform,omitempty"`
	Format   string `json:"format,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type startResponse struct {
	TaskID  string `json:"task_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResult is the parsed view of one vendor task-status response.
// State is resolved through the closed domain enum; RawStatus keeps the
// wire value for logging.
type StatusResult struct {
	State        domain.TaskState
	RawStatus    string
	Progress     *int
	VideoURL     string
	ErrorMessage string
}

type statusResponse struct {
	Status       string `json:"status"`
	Progress     *int   `json:"progress,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Message      string `json:"message,omitempty"`
}

// StartGeneration submits one generation task and returns the vendor task id.
func (c *Client) StartGeneration(ctx context.Context, req StartRequest) (string, error) {
	if c == nil {
		return "", errors.New("video client not configured")
	}
	if c.token == "" {
		return "", errors.New("video: API key is missing")
	}
	if err := domain.ValidatePrompt(req.Prompt); err != nil {
		return "", err
	}
	payload := startPayload{
		Model:    c.model,
		Prompt:   strings.TrimSpace(req.Prompt),
		Duration: req.Duration,
		Platform: req.Platform,
		Format:   req.Format,
		ImageURL: req.ImageURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	endpoint := c.baseURL + "/videos/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out startResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("video: http %d", resp.StatusCode)
		}
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return "", fmt.Errorf("video error: %s (%s)", out.Message, out.Code)
		}
		return "", fmt.Errorf("video: http %d", resp.StatusCode)
	}
	if strings.TrimSpace(out.TaskID) == "" {
		return "", errors.New("video: missing task id")
	}
	return out.TaskID, nil
}

// TaskStatus fetches and parses the current status of a generation task.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (*StatusResult, error) {
	if c == nil {
		return nil, errors.New("video client not configured")
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, errors.New("video: task id required")
	}
	endpoint := c.baseURL + "/videos/generations/" + url.PathEscape(taskID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("video: http %d", resp.StatusCode)
		}
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return nil, fmt.Errorf("video error: %s", out.Message)
		}
		return nil, fmt.Errorf("video: http %d", resp.StatusCode)
	}
	result := &StatusResult{
		State:        domain.ParseTaskState(out.Status),
		RawStatus:    out.Status,
		VideoURL:     out.VideoURL,
		ErrorMessage: out.ErrorMessage,
	}
	if out.Progress != nil {
		p := domain.ClampProgress(*out.Progress)
		result.Progress = &p
	}
	return result, nil
}

package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"creationhub/internal/domain"
)

// Options configures the vendor image generation client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the hosted image generation/edit API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	model      string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-image-1"
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.APIKey),
		model:      model,
	}
}

// Result is the usable outcome of a generation or edit call.
type Result struct {
	ImageURL      string
	RevisedPrompt string
}

type generatePayload struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	Quality     string `json:"quality,omitempty"`
	Size        string `json:"size,omitempty"`
	Format      string `json:"output_format,omitempty"`
	Background  string `json:"background,omitempty"`
	Compression int    `json:"output_compression,omitempty"`
}

type vendorResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Generate produces one image from a text prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts domain.ImageOptions) (*Result, error) {
	if c == nil {
		return nil, errors.New("image client not configured")
	}
	if c.token == "" {
		return nil, errors.New("image: API key is missing")
	}
	if err := domain.ValidatePrompt(prompt); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	payload := generatePayload{
		Model:       c.model,
		Prompt:      strings.TrimSpace(prompt),
		Quality:     opts.Quality,
		Size:        opts.Size,
		Format:      opts.Format,
		Background:  opts.Background,
		Compression: opts.Compression,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req)
}

// Edit submits an image blob plus instruction as multipart form data.
func (c *Client) Edit(ctx context.Context, imageData []byte, filename, prompt string, opts domain.ImageOptions) (*Result, error) {
	if c == nil {
		return nil, errors.New("image client not configured")
	}
	if c.token == "" {
		return nil, errors.New("image: API key is missing")
	}
	if len(imageData) == 0 {
		return nil, errors.New("image: source image required")
	}
	if err := domain.ValidatePrompt(prompt); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", coalesce(filename, "image.png"))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, err
	}
	fields := map[string]string{
		"model":  c.model,
		"prompt": strings.TrimSpace(prompt),
	}
	if opts.Quality != "" {
		fields["quality"] = opts.Quality
	}
	if opts.Size != "" {
		fields["size"] = opts.Size
	}
	if opts.Format != "" {
		fields["output_format"] = opts.Format
	}
	if opts.Compression > 0 {
		fields["output_compression"] = strconv.Itoa(opts.Compression)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/edits", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Result, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out vendorResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("image: http %d", resp.StatusCode)
		}
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error.Message != "" {
			return nil, fmt.Errorf("image error: %s", out.Error.Message)
		}
		return nil, fmt.Errorf("image: http %d", resp.StatusCode)
	}
	if len(out.Data) == 0 || strings.TrimSpace(out.Data[0].URL) == "" {
		return nil, errors.New("image: empty response")
	}
	return &Result{
		ImageURL:      out.Data[0].URL,
		RevisedPrompt: out.Data[0].RevisedPrompt,
	}, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"creationhub/internal/infra"
)

// OpenAIOptions configures the OpenAI-backed enhancer.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Fallback   Enhancer
	Logger     *infra.Logger
}

// OpenAIEnhancer calls the chat completions API and falls back to a
// secondary enhancer when the call or the payload parse fails.
type OpenAIEnhancer struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	fallback   Enhancer
	logger     *infra.Logger
}

func NewOpenAIEnhancer(opts OpenAIOptions) *OpenAIEnhancer {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticEnhancer()
	}
	return &OpenAIEnhancer{
		httpClient: client,
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    base,
		fallback:   fallback,
		logger:     opts.Logger,
	}
}

func (o *OpenAIEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	if o.apiKey == "" {
		return o.useFallback(ctx, req, errors.New("missing api key"))
	}
	raw, err := o.complete(ctx, buildEnhancePromptPayload(req))
	if err != nil {
		return o.useFallback(ctx, req, err)
	}
	payload, err := parseModelPayload[modelEnhancePayload](raw)
	if err != nil {
		return o.useFallback(ctx, req, err)
	}
	enhanced := coalesce(payload.Prompt, req.Prompt)
	res := &EnhanceResponse{
		Prompt:   enhanced,
		Title:    coalesce(payload.Title, firstWords(enhanced, 6)),
		Keywords: normalizeKeywords(payload.Keywords, req.Medium),
		Metadata: ensureMetadata(payload.Metadata, req.Locale),
		Provider: openAIProviderName,
	}
	return res, nil
}

func (o *OpenAIEnhancer) Random(ctx context.Context, locale string) ([]EnhanceResponse, error) {
	if o.apiKey == "" {
		return o.useFallbackRandom(ctx, locale, errors.New("missing api key"))
	}
	raw, err := o.complete(ctx, buildRandomPromptPayload(locale))
	if err != nil {
		return o.useFallbackRandom(ctx, locale, err)
	}
	payload, err := parseModelPayload[modelRandomPayload](raw)
	if err != nil || len(payload.Items) == 0 {
		if err == nil {
			err = errors.New("empty items")
		}
		return o.useFallbackRandom(ctx, locale, err)
	}
	items := make([]EnhanceResponse, 0, len(payload.Items))
	for _, item := range payload.Items {
		if strings.TrimSpace(item.Prompt) == "" {
			continue
		}
		items = append(items, EnhanceResponse{
			Prompt:   item.Prompt,
			Title:    coalesce(item.Title, firstWords(item.Prompt, 6)),
			Keywords: normalizeKeywords(item.Keywords, "idea"),
			Metadata: ensureMetadata(nil, locale),
			Provider: openAIProviderName,
		})
	}
	if len(items) == 0 {
		return o.useFallbackRandom(ctx, locale, errors.New("no usable items"))
	}
	return items, nil
}

func (o *OpenAIEnhancer) useFallback(ctx context.Context, req EnhanceRequest, cause error) (*EnhanceResponse, error) {
	if o.logger != nil {
		o.logger.Warn().Err(cause).Msg("openai enhance failed, using fallback")
	}
	res, err := o.fallback.Enhance(ctx, req)
	if err != nil {
		return nil, err
	}
	res.Metadata = ensureMetadata(res.Metadata, req.Locale)
	res.Metadata["fallback_reason"] = cause.Error()
	return res, nil
}

func (o *OpenAIEnhancer) useFallbackRandom(ctx context.Context, locale string, cause error) ([]EnhanceResponse, error) {
	if o.logger != nil {
		o.logger.Warn().Err(cause).Msg("openai random failed, using fallback")
	}
	return o.fallback.Random(ctx, locale)
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenAIEnhancer) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You respond only with valid JSON."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error.Message != "" {
			return "", fmt.Errorf("openai: %s", out.Error.Message)
		}
		return "", fmt.Errorf("openai: http %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

var _ Enhancer = (*OpenAIEnhancer)(nil)

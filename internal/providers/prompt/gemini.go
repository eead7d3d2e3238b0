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

// GeminiOptions configures the Gemini-backed enhancer.
type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Fallback   Enhancer
	Logger     *infra.Logger
}

// GeminiEnhancer calls the generateContent API. It degrades to the
// configured fallback on any transport or parse failure.
type GeminiEnhancer struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	fallback   Enhancer
	logger     *infra.Logger
}

func NewGeminiEnhancer(opts GeminiOptions) *GeminiEnhancer {
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
		model = "gemini-2.0-flash"
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta"
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticEnhancer()
	}
	return &GeminiEnhancer{
		httpClient: client,
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    base,
		fallback:   fallback,
		logger:     opts.Logger,
	}
}

func (g *GeminiEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	if g.apiKey == "" {
		return g.useFallback(ctx, req, errors.New("missing api key"))
	}
	raw, err := g.generate(ctx, buildEnhancePromptPayload(req))
	if err != nil {
		return g.useFallback(ctx, req, err)
	}
	payload, err := parseModelPayload[modelEnhancePayload](raw)
	if err != nil {
		return g.useFallback(ctx, req, err)
	}
	enhanced := coalesce(payload.Prompt, req.Prompt)
	res := &EnhanceResponse{
		Prompt:   enhanced,
		Title:    coalesce(payload.Title, firstWords(enhanced, 6)),
		Keywords: normalizeKeywords(payload.Keywords, req.Medium),
		Metadata: ensureMetadata(payload.Metadata, req.Locale),
		Provider: geminiProviderName,
	}
	return res, nil
}

func (g *GeminiEnhancer) Random(ctx context.Context, locale string) ([]EnhanceResponse, error) {
	if g.apiKey == "" {
		return g.useFallbackRandom(ctx, locale, errors.New("missing api key"))
	}
	raw, err := g.generate(ctx, buildRandomPromptPayload(locale))
	if err != nil {
		return g.useFallbackRandom(ctx, locale, err)
	}
	payload, err := parseModelPayload[modelRandomPayload](raw)
	if err != nil || len(payload.Items) == 0 {
		if err == nil {
			err = errors.New("empty items")
		}
		return g.useFallbackRandom(ctx, locale, err)
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
			Provider: geminiProviderName,
		})
	}
	if len(items) == 0 {
		return g.useFallbackRandom(ctx, locale, errors.New("no usable items"))
	}
	return items, nil
}

func (g *GeminiEnhancer) useFallback(ctx context.Context, req EnhanceRequest, cause error) (*EnhanceResponse, error) {
	if g.logger != nil {
		g.logger.Warn().Err(cause).Msg("gemini enhance failed, using fallback")
	}
	res, err := g.fallback.Enhance(ctx, req)
	if err != nil {
		return nil, err
	}
	res.Metadata = ensureMetadata(res.Metadata, req.Locale)
	res.Metadata["fallback_reason"] = cause.Error()
	return res, nil
}

func (g *GeminiEnhancer) useFallbackRandom(ctx context.Context, locale string, cause error) ([]EnhanceResponse, error) {
	if g.logger != nil {
		g.logger.Warn().Err(cause).Msg("gemini random failed, using fallback")
	}
	return g.fallback.Random(ctx, locale)
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiEnhancer) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
}

func (g *GeminiEnhancer) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error.Message != "" {
			return "", fmt.Errorf("gemini: %s", out.Error.Message)
		}
		return "", fmt.Errorf("gemini: http %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: empty candidates")
	}
	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

var _ Enhancer = (*GeminiEnhancer)(nil)

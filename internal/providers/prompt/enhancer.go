package prompt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EnhanceRequest carries a raw user prompt plus generation context.
type EnhanceRequest struct {
	Prompt string
	Medium string // "image" or "video"
	Style  string
	Locale string
}

// EnhanceResponse is the improved prompt with supporting metadata.
type EnhanceResponse struct {
	Prompt   string            `json:"prompt"`
	Title    string            `json:"title"`
	Keywords []string          `json:"keywords"`
	Metadata map[string]string `json:"metadata"`
	Provider string            `json:"-"`
}

// Enhancer rewrites user prompts into richer generation prompts and
// supplies random starter ideas.
type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error)
	Random(ctx context.Context, locale string) ([]EnhanceResponse, error)
}

// StaticEnhancer is the deterministic last-resort provider used when no
// hosted model is reachable.
type StaticEnhancer struct{}

func NewStaticEnhancer() *StaticEnhancer {
	return &StaticEnhancer{}
}

func (s *StaticEnhancer) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResponse, error) {
	c := cases.Title(language.Und)
	base := strings.TrimSpace(req.Prompt)
	if base == "" {
		base = "an untitled scene"
	}
	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = "cinematic"
	}
	medium := req.Medium
	if medium == "" {
		medium = "image"
	}
	enhanced := fmt.Sprintf("%s, %s style, detailed composition, natural lighting, high fidelity", base, style)
	res := &EnhanceResponse{
		Prompt:   enhanced,
		Title:    c.String(firstWords(base, 6)),
		Keywords: []string{medium, style, "detailed"},
		Metadata: map[string]string{
			"locale": req.Locale,
		},
		Provider: staticProviderName,
	}
	return res, nil
}

func (s *StaticEnhancer) Random(ctx context.Context, locale string) ([]EnhanceResponse, error) {
	items := []EnhanceResponse{
		{Prompt: "A lighthouse on a basalt cliff at dusk, long exposure, volumetric fog", Title: "Lighthouse At Dusk", Keywords: []string{"seascape", "moody"}, Metadata: map[string]string{"locale": locale}, Provider: staticProviderName},
		{Prompt: "Macro shot of dew on a spider web, golden hour backlight, shallow depth of field", Title: "Morning Web", Keywords: []string{"macro", "nature"}, Metadata: map[string]string{"locale": locale}, Provider: staticProviderName},
		{Prompt: "Isometric cutaway of a cozy bookshop on a rainy evening, warm interior light", Title: "Rainy Bookshop", Keywords: []string{"isometric", "cozy"}, Metadata: map[string]string{"locale": locale}, Provider: staticProviderName},
	}
	return items, nil
}

func firstWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

var _ Enhancer = (*StaticEnhancer)(nil)

package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
)

type modelEnhancePayload struct {
	Prompt   string            `json:"prompt"`
	Title    string            `json:"title"`
	Keywords []string          `json:"keywords"`
	Metadata map[string]string `json:"metadata"`
}

type modelIdeaPayload struct {
	Prompt   string   `json:"prompt"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

type modelRandomPayload struct {
	Items  []modelIdeaPayload `json:"items"`
	Locale string             `json:"locale"`
}

func buildEnhancePromptPayload(req EnhanceRequest) string {
	medium := req.Medium
	if medium == "" {
		medium = "image"
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a prompt engineer for AI %s generation. Respond strictly with JSON matching this schema: ", medium)
	sb.WriteString(`{"prompt":string,"title":string,"keywords":string[],"metadata":{"locale":string}}`)
	fmt.Fprintf(sb, ". Rewrite the user prompt into a vivid, specific generation prompt, keeping the subject intact. Use locale '%s'. User prompt: %q. Preferred style: %q.", coalesce(req.Locale, "en"), req.Prompt, req.Style)
	return sb.String()
}

func buildRandomPromptPayload(locale string) string {
	if locale == "" {
		locale = "en"
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Generate three unique starter prompts for AI image or video generation. Respond strictly as JSON: {\"items\":[{\"prompt\":string,\"title\":string,\"keywords\":string[]}],\"locale\":%q}. Use locale '%s' and make each idea noticeably different. randomness_token=%d.", locale, locale, time.Now().UnixNano())
	return sb.String()
}

func ensureMetadata(meta map[string]string, locale string) map[string]string {
	if meta == nil {
		meta = map[string]string{}
	}
	if locale != "" {
		meta["locale"] = locale
	} else if _, ok := meta["locale"]; !ok {
		meta["locale"] = "en"
	}
	return meta
}

func normalizeKeywords(keywords []string, fallback string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		kwLower := strings.ToLower(kw)
		if _, ok := seen[kwLower]; ok {
			continue
		}
		seen[kwLower] = struct{}{}
		result = append(result, kw)
	}
	if len(result) == 0 && fallback != "" {
		result = []string{fallback}
	}
	return result
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

package prompt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStaticEnhance(t *testing.T) {
	s := NewStaticEnhancer()
	res, err := s.Enhance(context.Background(), EnhanceRequest{Prompt: "a quiet harbor at dawn", Medium: "image", Locale: "en"})
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if !strings.Contains(res.Prompt, "a quiet harbor at dawn") {
		t.Fatalf("enhanced prompt should contain the original, got %q", res.Prompt)
	}
	if res.Provider != staticProviderName {
		t.Fatalf("Provider = %q", res.Provider)
	}
	if res.Title == "" {
		t.Fatal("expected a title")
	}
}

func TestStaticRandomReturnsDistinctPrompts(t *testing.T) {
	s := NewStaticEnhancer()
	items, err := s.Random(context.Background(), "en")
	if err != nil {
		t.Fatalf("Random returned error: %v", err)
	}
	if len(items) < 3 {
		t.Fatalf("expected at least 3 items, got %d", len(items))
	}
	seen := map[string]bool{}
	for _, item := range items {
		if seen[item.Prompt] {
			t.Fatalf("duplicate prompt %q", item.Prompt)
		}
		seen[item.Prompt] = true
	}
}

func TestOpenAIEnhance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"prompt\":\"a quiet harbor at dawn, soft mist, golden light\",\"title\":\"Harbor Dawn\",\"keywords\":[\"harbor\",\"dawn\"]}"}}]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEnhancer(OpenAIOptions{APIKey: "key", BaseURL: srv.URL})
	res, err := e.Enhance(context.Background(), EnhanceRequest{Prompt: "a quiet harbor", Medium: "image", Locale: "en"})
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if res.Provider != openAIProviderName {
		t.Fatalf("Provider = %q", res.Provider)
	}
	if res.Title != "Harbor Dawn" {
		t.Fatalf("Title = %q", res.Title)
	}
	if res.Metadata["locale"] != "en" {
		t.Fatalf("locale metadata = %q", res.Metadata["locale"])
	}
}

func TestOpenAIFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer srv.Close()

	e := NewOpenAIEnhancer(OpenAIOptions{APIKey: "key", BaseURL: srv.URL})
	res, err := e.Enhance(context.Background(), EnhanceRequest{Prompt: "a quiet harbor", Locale: "id"})
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if res.Provider != staticProviderName {
		t.Fatalf("Provider = %q, want static fallback", res.Provider)
	}
	if !strings.Contains(res.Metadata["fallback_reason"], "overloaded") {
		t.Fatalf("fallback_reason = %q", res.Metadata["fallback_reason"])
	}
}

func TestOpenAIWithoutKeyUsesFallback(t *testing.T) {
	e := NewOpenAIEnhancer(OpenAIOptions{})
	res, err := e.Enhance(context.Background(), EnhanceRequest{Prompt: "night market street food"})
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if res.Provider != staticProviderName {
		t.Fatalf("Provider = %q", res.Provider)
	}
}

func TestGeminiEnhanceParsesFencedJSON(t *testing.T) {
	fenced := "```json\n{\"prompt\":\"a volcano seen from orbit, ash plume, dramatic scale\",\"keywords\":[\"volcano\"]}\n```"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "key" {
			t.Errorf("api key header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": fenced}}}},
			},
		})
	}))
	defer srv.Close()

	e := NewGeminiEnhancer(GeminiOptions{APIKey: "key", BaseURL: srv.URL})
	res, err := e.Enhance(context.Background(), EnhanceRequest{Prompt: "a volcano", Medium: "video"})
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if res.Provider != geminiProviderName {
		t.Fatalf("Provider = %q", res.Provider)
	}
	if !strings.Contains(res.Prompt, "volcano seen from orbit") {
		t.Fatalf("Prompt = %q", res.Prompt)
	}
}

func TestGeminiRandomFallsBackOnEmptyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"items\":[]}"}]}}]}`))
	}))
	defer srv.Close()

	e := NewGeminiEnhancer(GeminiOptions{APIKey: "key", BaseURL: srv.URL})
	items, err := e.Random(context.Background(), "en")
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected fallback items")
	}
	if items[0].Provider != staticProviderName {
		t.Fatalf("Provider = %q", items[0].Provider)
	}
}

func TestExtractJSONFragment(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapped", `Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"empty", "   ", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSONFragment(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeKeywords(t *testing.T) {
	got := normalizeKeywords([]string{" Harbor ", "harbor", "", "dawn"}, "x")
	if len(got) != 2 || got[0] != "Harbor" || got[1] != "dawn" {
		t.Fatalf("got %v", got)
	}
	if got := normalizeKeywords(nil, "image"); len(got) != 1 || got[0] != "image" {
		t.Fatalf("fallback got %v", got)
	}
}

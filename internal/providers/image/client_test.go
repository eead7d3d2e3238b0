package image

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creationhub/internal/domain"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"url":"https://cdn/img.png","revised_prompt":"a refined prompt"}]}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	res, err := client.Generate(context.Background(), "a lighthouse at dusk", domain.ImageOptions{Quality: "high"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if res.ImageURL != "https://cdn/img.png" {
		t.Fatalf("ImageURL = %q", res.ImageURL)
	}
	if res.RevisedPrompt != "a refined prompt" {
		t.Fatalf("RevisedPrompt = %q", res.RevisedPrompt)
	}
}

func TestGenerateValidatesBeforeNetwork(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	if _, err := client.Generate(context.Background(), "ok prompt", domain.ImageOptions{Quality: "ultra"}); err == nil {
		t.Fatal("expected option validation error")
	}
	if _, err := client.Generate(context.Background(), "  ", domain.ImageOptions{}); err == nil {
		t.Fatal("expected prompt validation error")
	}
	if calls != 0 {
		t.Fatalf("expected no network calls, got %d", calls)
	}
}

func TestGenerateVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"content policy violation"}}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	_, err := client.Generate(context.Background(), "something risky", domain.ImageOptions{})
	if err == nil || !strings.Contains(err.Error(), "content policy violation") {
		t.Fatalf("err = %v", err)
	}
}

func TestEditSendsMultipart(t *testing.T) {
	var gotContentType, gotPrompt string
	var gotImage []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotPrompt = r.FormValue("prompt")
		file, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			buf := make([]byte, 16)
			n, _ := file.Read(buf)
			gotImage = buf[:n]
			file.Close()
		}
		w.Write([]byte(`{"data":[{"url":"https://cdn/edited.png"}]}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, APIKey: "key"})
	res, err := client.Edit(context.Background(), []byte("png-bytes"), "source.png", "make it warmer", domain.ImageOptions{})
	if err != nil {
		t.Fatalf("Edit returned error: %v", err)
	}
	if res.ImageURL != "https://cdn/edited.png" {
		t.Fatalf("ImageURL = %q", res.ImageURL)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data") {
		t.Fatalf("content type = %q", gotContentType)
	}
	if gotPrompt != "make it warmer" {
		t.Fatalf("prompt = %q", gotPrompt)
	}
	if string(gotImage) != "png-bytes" {
		t.Fatalf("image = %q", gotImage)
	}
}

func TestEditRequiresImage(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://unused", APIKey: "key"})
	if _, err := client.Edit(context.Background(), nil, "", "a prompt here", domain.ImageOptions{}); err == nil {
		t.Fatal("expected error for missing image")
	}
}

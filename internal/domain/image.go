package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinPromptLength = 3
	MaxPromptLength = 4000
)

// GeneratedImage mirrors one row of the generated_images table.
type GeneratedImage struct {
	ID             string
	UserID         string
	Prompt         string
	RevisedPrompt  string
	ImageURL       string
	Quality        string
	Size           string
	Style          string
	Model          string
	Status         JobStatus
	ConversationID string
	ParentImageID  string
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ImageFilter narrows gallery listings.
type ImageFilter struct {
	UserID         string
	ConversationID string
	Status         JobStatus
	Limit          int
	Offset         int
}

// ImageOptions are the tunable parameters of an image generation request.
type ImageOptions struct {
	Quality     string
	Size        string
	Format      string
	Background  string
	Compression int
}

var (
	allowedQualities   = map[string]bool{"low": true, "medium": true, "high": true, "auto": true}
	allowedSizes       = map[string]bool{"1024x1024": true, "1536x1024": true, "1024x1536": true, "auto": true}
	allowedFormats     = map[string]bool{"png": true, "jpeg": true, "webp": true}
	allowedBackgrounds = map[string]bool{"transparent": true, "opaque": true, "auto": true}
)

// ValidatePrompt rejects prompts that are empty after trimming or fall
// outside the accepted length bounds. Runs before any network call.
func ValidatePrompt(prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if len(trimmed) < MinPromptLength {
		return fmt.Errorf("%w: prompt must be at least %d characters", ErrInvalidPrompt, MinPromptLength)
	}
	if len(trimmed) > MaxPromptLength {
		return fmt.Errorf("%w: prompt must be at most %d characters", ErrInvalidPrompt, MaxPromptLength)
	}
	return nil
}

// Validate checks every option against its allow-list.
func (o ImageOptions) Validate() error {
	if o.Quality != "" && !allowedQualities[o.Quality] {
		return fmt.Errorf("%w: unsupported quality %q", ErrInvalidOption, o.Quality)
	}
	if o.Size != "" && !allowedSizes[o.Size] {
		return fmt.Errorf("%w: unsupported size %q", ErrInvalidOption, o.Size)
	}
	if o.Format != "" && !allowedFormats[o.Format] {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidOption, o.Format)
	}
	if o.Background != "" && !allowedBackgrounds[o.Background] {
		return fmt.Errorf("%w: unsupported background %q", ErrInvalidOption, o.Background)
	}
	if o.Compression < 0 || o.Compression > 100 {
		return fmt.Errorf("%w: compression must be within 0-100", ErrInvalidOption)
	}
	return nil
}

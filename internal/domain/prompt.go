package domain

import "time"

// PromptCategory groups library templates by discipline.
type PromptCategory string

const (
	PromptCategoryTherapy      PromptCategory = "therapy"
	PromptCategoryVideoIntel   PromptCategory = "video_intelligence"
	PromptCategoryImageStudio  PromptCategory = "image_studio"
	PromptCategoryStorytelling PromptCategory = "storytelling"
)

// PromptTemplate is one entry of the prompt library.
type PromptTemplate struct {
	ID          string
	Category    PromptCategory
	Title       string
	Description string
	Body        string
	Keywords    []string
	CreatedAt   time.Time
}

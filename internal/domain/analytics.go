package domain

import "time"

// UsageEvent records one billable interaction with the hub.
type UsageEvent struct {
	UserID      string
	Kind        string
	Success     bool
	CountryCode string
	CreatedAt   time.Time
}

const (
	UsageKindImageGenerate = "IMAGE_GENERATE"
	UsageKindImageEdit     = "IMAGE_EDIT"
	UsageKindVideoGenerate = "VIDEO_GENERATE"
	UsageKindPromptEnhance = "PROMPT_ENHANCE"
)

// UsageDaily aggregates metrics for a single day.
type UsageDaily struct {
	Day             time.Time
	ImagesGenerated int
	ImagesEdited    int
	VideosGenerated int
	PromptsEnhanced int
	RequestSuccess  int
	RequestFail     int
	Countries       map[string]int
}

package domain

import "context"

// ImageRepository persists generated image records.
type ImageRepository interface {
	Create(ctx context.Context, img *GeneratedImage) error
	GetByID(ctx context.Context, id string) (*GeneratedImage, error)
	List(ctx context.Context, filter ImageFilter) ([]GeneratedImage, error)
	Delete(ctx context.Context, id, userID string) error
}

// JobRepository persists video generation jobs.
type JobRepository interface {
	Create(ctx context.Context, job *GenerationJob) error
	UpdateStatus(ctx context.Context, jobID string, status JobStatus, progress int, resultURL, errMsg string) error
	GetByID(ctx context.Context, jobID string) (*GenerationJob, error)
}

// PromptRepository serves the prompt library.
type PromptRepository interface {
	ListByCategory(ctx context.Context, category PromptCategory, limit int) ([]PromptTemplate, error)
	Search(ctx context.Context, query string, limit int) ([]PromptTemplate, error)
}

// AnalyticsRepository updates and reads usage counters.
type AnalyticsRepository interface {
	RecordEvent(ctx context.Context, event UsageEvent) error
	GetDaily(ctx context.Context, day string) (*UsageDaily, error)
}

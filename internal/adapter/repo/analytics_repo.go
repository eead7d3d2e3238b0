package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"creationhub/internal/domain"
)

// AnalyticsRepositoryPG implements domain.AnalyticsRepository.
type AnalyticsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a usage analytics repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{pool: pool}
}

// RecordEvent appends one usage event. Events are written fire-and-forget
// from request paths, so callers usually log rather than propagate errors.
func (r *AnalyticsRepositoryPG) RecordEvent(ctx context.Context, event domain.UsageEvent) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO usage_events (user_id, kind, success, country_code, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5);
`, event.UserID, event.Kind, event.Success, event.CountryCode, createdAt)
	return err
}

// GetDaily aggregates usage counters for one calendar day (UTC).
func (r *AnalyticsRepositoryPG) GetDaily(ctx context.Context, day string) (*domain.UsageDaily, error) {
	parsed, err := time.Parse("2006-01-02", day)
	if err != nil {
		return nil, err
	}

	daily := &domain.UsageDaily{Day: parsed, Countries: map[string]int{}}
	row := r.pool.QueryRow(ctx, `
SELECT
  COUNT(*) FILTER (WHERE kind = $2),
  COUNT(*) FILTER (WHERE kind = $3),
  COUNT(*) FILTER (WHERE kind = $4),
  COUNT(*) FILTER (WHERE kind = $5),
  COUNT(*) FILTER (WHERE success),
  COUNT(*) FILTER (WHERE NOT success)
FROM usage_events
WHERE created_at >= $1 AND created_at < $1 + INTERVAL '1 day';
`, parsed,
		domain.UsageKindImageGenerate,
		domain.UsageKindImageEdit,
		domain.UsageKindVideoGenerate,
		domain.UsageKindPromptEnhance,
	)
	if err := row.Scan(
		&daily.ImagesGenerated,
		&daily.ImagesEdited,
		&daily.VideosGenerated,
		&daily.PromptsEnhanced,
		&daily.RequestSuccess,
		&daily.RequestFail,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return daily, nil
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT country_code, COUNT(*)
FROM usage_events
WHERE created_at >= $1 AND created_at < $1 + INTERVAL '1 day' AND country_code IS NOT NULL
GROUP BY country_code;
`, parsed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, err
		}
		daily.Countries[code] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return daily, nil
}

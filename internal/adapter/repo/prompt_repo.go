package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"creationhub/internal/domain"
)

// PromptRepositoryPG implements domain.PromptRepository.
type PromptRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPromptRepository creates a prompt library repository.
func NewPromptRepository(pool *pgxpool.Pool) *PromptRepositoryPG {
	return &PromptRepositoryPG{pool: pool}
}

// ListByCategory returns library templates for one category.
func (r *PromptRepositoryPG) ListByCategory(ctx context.Context, category domain.PromptCategory, limit int) ([]domain.PromptTemplate, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, category, title, description, body, keywords, created_at
FROM prompt_templates
WHERE category = $1
ORDER BY title ASC
LIMIT $2;
`, category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

// Search matches templates whose title or body contains the query.
func (r *PromptRepositoryPG) Search(ctx context.Context, query string, limit int) ([]domain.PromptTemplate, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT id, category, title, description, body, keywords, created_at
FROM prompt_templates
WHERE title ILIKE '%' || $1 || '%' OR body ILIKE '%' || $1 || '%'
ORDER BY title ASC
LIMIT $2;
`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTemplates(rows)
}

type templateRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTemplates(rows templateRows) ([]domain.PromptTemplate, error) {
	var templates []domain.PromptTemplate
	for rows.Next() {
		var tpl domain.PromptTemplate
		if err := rows.Scan(&tpl.ID, &tpl.Category, &tpl.Title, &tpl.Description, &tpl.Body, &tpl.Keywords, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

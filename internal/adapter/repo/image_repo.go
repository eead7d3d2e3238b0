package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"creationhub/internal/domain"
)

// ImageRepositoryPG implements domain.ImageRepository using PostgreSQL.
type ImageRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewImageRepository constructs a new generated-image repository.
func NewImageRepository(pool *pgxpool.Pool) *ImageRepositoryPG {
	return &ImageRepositoryPG{pool: pool}
}

// Create inserts a new generated image record.
func (r *ImageRepositoryPG) Create(ctx context.Context, img *domain.GeneratedImage) error {
	query := `
INSERT INTO generated_images (id, user_id, prompt, revised_prompt, image_url, quality, size, style, model, status, conversation_id, parent_image_id, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''), $13);
`
	_, err := r.pool.Exec(ctx, query,
		img.ID,
		img.UserID,
		img.Prompt,
		img.RevisedPrompt,
		img.ImageURL,
		img.Quality,
		img.Size,
		img.Style,
		img.Model,
		img.Status,
		img.ConversationID,
		img.ParentImageID,
		img.Metadata,
	)
	return err
}

// GetByID fetches one image by its identifier.
func (r *ImageRepositoryPG) GetByID(ctx context.Context, id string) (*domain.GeneratedImage, error) {
	query := `
SELECT id, user_id, prompt, revised_prompt, image_url, quality, size, style, model, status, COALESCE(conversation_id, ''), COALESCE(parent_image_id, ''), metadata, created_at, updated_at
FROM generated_images
WHERE id = $1;
`
	row := r.pool.QueryRow(ctx, query, id)
	var img domain.GeneratedImage
	if err := row.Scan(
		&img.ID,
		&img.UserID,
		&img.Prompt,
		&img.RevisedPrompt,
		&img.ImageURL,
		&img.Quality,
		&img.Size,
		&img.Style,
		&img.Model,
		&img.Status,
		&img.ConversationID,
		&img.ParentImageID,
		&img.Metadata,
		&img.CreatedAt,
		&img.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// List returns gallery entries matching the filter, newest first.
func (r *ImageRepositoryPG) List(ctx context.Context, filter domain.ImageFilter) ([]domain.GeneratedImage, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
SELECT id, user_id, prompt, revised_prompt, image_url, quality, size, style, model, status, COALESCE(conversation_id, ''), COALESCE(parent_image_id, ''), metadata, created_at, updated_at
FROM generated_images
WHERE user_id = $1
  AND ($2 = '' OR conversation_id = $2)
  AND ($3 = '' OR status = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5;
`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.ConversationID, string(filter.Status), limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []domain.GeneratedImage
	for rows.Next() {
		var img domain.GeneratedImage
		if err := rows.Scan(
			&img.ID,
			&img.UserID,
			&img.Prompt,
			&img.RevisedPrompt,
			&img.ImageURL,
			&img.Quality,
			&img.Size,
			&img.Style,
			&img.Model,
			&img.Status,
			&img.ConversationID,
			&img.ParentImageID,
			&img.Metadata,
			&img.CreatedAt,
			&img.UpdatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// Delete removes an image owned by the user. Deleting someone else's
// image reports domain.ErrNotFound rather than leaking existence.
func (r *ImageRepositoryPG) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM generated_images WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

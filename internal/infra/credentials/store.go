package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

const (
	ProviderVideo  = "video"
	ProviderImage  = "image"
	ProviderOpenAI = "openai"
)

// Querier matches the QueryRow surface of *pgxpool.Pool.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads vendor API tokens from the integration_tokens table. Used
// as a fallback when the corresponding environment variable is empty.
type Store struct {
	db Querier
}

func NewStore(db Querier) *Store {
	return &Store{db: db}
}

func (s *Store) VideoAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderVideo)
}

func (s *Store) ImageAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderImage)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("credentials: store not configured")
	}
	row := s.db.QueryRow(ctx, `
SELECT token
FROM integration_tokens
WHERE provider = $1;
`, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

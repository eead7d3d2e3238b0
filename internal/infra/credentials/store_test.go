package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	return r.scan(dest...)
}

type stubQuerier struct {
	row stubRow
}

func (q stubQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.row
}

func TestTokenTrimsWhitespace(t *testing.T) {
	store := NewStore(stubQuerier{row: stubRow{scan: func(dest ...any) error {
		*(dest[0].(*string)) = "  secret-token \n"
		return nil
	}}})
	token, err := store.Token(context.Background(), ProviderVideo)
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "secret-token" {
		t.Fatalf("token = %q, want %q", token, "secret-token")
	}
}

func TestTokenMissingRowIsEmpty(t *testing.T) {
	store := NewStore(stubQuerier{row: stubRow{scan: func(dest ...any) error {
		return pgx.ErrNoRows
	}}})
	token, err := store.Token(context.Background(), ProviderImage)
	if err != nil {
		t.Fatalf("Token returned error: %v", err)
	}
	if token != "" {
		t.Fatalf("token = %q, want empty", token)
	}
}

func TestTokenPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	store := NewStore(stubQuerier{row: stubRow{scan: func(dest ...any) error {
		return boom
	}}})
	if _, err := store.Token(context.Background(), ProviderOpenAI); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

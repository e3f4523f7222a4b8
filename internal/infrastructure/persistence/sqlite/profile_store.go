package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bnema/featgate/internal/domain/repository"
)

type profileStore struct {
	db *sql.DB
}

// NewProfileStore creates a SQLite-backed profile key-value store.
func NewProfileStore(db *sql.DB) repository.ProfileStore {
	return &profileStore{db: db}
}

func (s *profileStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM profile_state WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get profile value %q: %w", key, err)
	}
	return value, true, nil
}

func (s *profileStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile_state (key, value, updated_at)
		 VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set profile value %q: %w", key, err)
	}
	return nil
}

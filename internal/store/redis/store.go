package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/adisetya/sheethub/internal/domain"
)

// Store handles Redis operations for the client-local key/value surface:
// user-added rows, saved views, theme preference and the token copy.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// LocalRows returns the persisted user-added rows. A missing key is an
// empty list, not an error.
func (s *Store) LocalRows(ctx context.Context) ([]domain.Row, error) {
	data, err := s.client.Get(ctx, KeyLocalRows).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.Row{}, nil
		}
		return nil, fmt.Errorf("failed to get local rows: %w", err)
	}

	var rows []domain.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal local rows: %w", err)
	}
	return rows, nil
}

// SaveLocalRows replaces the persisted user-added row list.
func (s *Store) SaveLocalRows(ctx context.Context, rows []domain.Row) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal local rows: %w", err)
	}
	if err := s.client.Set(ctx, KeyLocalRows, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save local rows: %w", err)
	}
	return nil
}

// SaveCatalogRows mirrors the latest catalog fetch. Best effort from the
// caller's point of view; the mirror is diagnostic, not authoritative.
func (s *Store) SaveCatalogRows(ctx context.Context, rows []domain.Row) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog rows: %w", err)
	}
	if err := s.client.Set(ctx, KeyCatalogRows, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to mirror catalog rows: %w", err)
	}
	return nil
}

// SavedViews returns the persisted saved-view list.
func (s *Store) SavedViews(ctx context.Context) ([]domain.SavedView, error) {
	data, err := s.client.Get(ctx, KeySavedViews).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.SavedView{}, nil
		}
		return nil, fmt.Errorf("failed to get saved views: %w", err)
	}

	var views []domain.SavedView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saved views: %w", err)
	}
	return views, nil
}

// SaveSavedViews replaces the persisted saved-view list.
func (s *Store) SaveSavedViews(ctx context.Context, views []domain.SavedView) error {
	data, err := json.Marshal(views)
	if err != nil {
		return fmt.Errorf("failed to marshal saved views: %w", err)
	}
	if err := s.client.Set(ctx, KeySavedViews, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save views: %w", err)
	}
	return nil
}

// Theme returns the stored theme preference, empty when unset.
func (s *Store) Theme(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, KeyTheme).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get theme: %w", err)
	}
	return v, nil
}

// SaveTheme stores the theme preference. The value is opaque to the server.
func (s *Store) SaveTheme(ctx context.Context, theme string) error {
	if err := s.client.Set(ctx, KeyTheme, theme, 0).Err(); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

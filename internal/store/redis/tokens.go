package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adisetya/sheethub/internal/domain"
)

// Token TTLs for the client-local copy. The cookie copy carries its own
// lifetimes; the two are not reconciled.
const (
	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

// TokenSink adapts the store to the auth dual-sink contract.
type TokenSink struct {
	store *Store
}

// NewTokenSink wraps the store as a token sink.
func NewTokenSink(store *Store) *TokenSink {
	return &TokenSink{store: store}
}

func (t *TokenSink) Name() string { return "redis" }

// Write stores the token triple across its three keys in one pipeline.
// A record without a refresh token leaves the stored refresh half alone.
func (t *TokenSink) Write(ctx context.Context, rec domain.TokenRecord) error {
	pipe := t.store.client.Pipeline()
	pipe.Set(ctx, KeyAccessToken, rec.AccessToken, accessTokenTTL)
	pipe.Set(ctx, KeyTokenExpiry, strconv.FormatInt(rec.ExpiresAt.Unix(), 10), refreshTokenTTL)
	if rec.RefreshToken != "" {
		pipe.Set(ctx, KeyRefreshToken, rec.RefreshToken, refreshTokenTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

// Read loads the token triple. Absent keys yield a zero record.
func (t *TokenSink) Read(ctx context.Context) (domain.TokenRecord, error) {
	var rec domain.TokenRecord

	access, err := t.store.client.Get(ctx, KeyAccessToken).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return rec, fmt.Errorf("failed to get access token: %w", err)
	}
	refresh, err := t.store.client.Get(ctx, KeyRefreshToken).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return rec, fmt.Errorf("failed to get refresh token: %w", err)
	}
	expiry, err := t.store.client.Get(ctx, KeyTokenExpiry).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return rec, fmt.Errorf("failed to get token expiry: %w", err)
	}

	rec.AccessToken = access
	rec.RefreshToken = refresh
	if expiry != "" {
		if unix, err := strconv.ParseInt(expiry, 10, 64); err == nil {
			rec.ExpiresAt = time.Unix(unix, 0)
		}
	}
	return rec, nil
}

// Clear discards all stored token material.
func (t *TokenSink) Clear(ctx context.Context) error {
	if err := t.store.client.Del(ctx, KeyAccessToken, KeyRefreshToken, KeyTokenExpiry).Err(); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

package sqlite

import (
	"context"
	"fmt"

	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/storage"
)

// Tokens returns the stored token pair. Either token may be empty.
func (s *SQLiteStore) Tokens(ctx context.Context) (models.TokenPair, error) {
	access, _, err := s.get(ctx, storage.KeyAccessToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, _, err := s.get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// SaveTokens stores both tokens atomically. An empty token removes its key.
func (s *SQLiteStore) SaveTokens(ctx context.Context, tokens models.TokenPair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	pairs := []struct{ key, value string }{
		{storage.KeyAccessToken, tokens.AccessToken},
		{storage.KeyRefreshToken, tokens.RefreshToken},
	}
	for _, p := range pairs {
		if p.value == "" {
			err = s.remove(ctx, tx, p.key)
		} else {
			err = s.set(ctx, tx, p.key, p.value)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ClearTokens removes both tokens.
func (s *SQLiteStore) ClearTokens(ctx context.Context) error {
	return s.remove(ctx, s.db, storage.KeyAccessToken, storage.KeyRefreshToken)
}

package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/storage"
)

// User returns the stored user snapshot, or nil when none is stored.
func (s *SQLiteStore) User(ctx context.Context) (*models.User, error) {
	raw, ok, err := s.get(ctx, storage.KeyUserData)
	if err != nil || !ok {
		return nil, err
	}

	user := &models.User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCorruptSnapshot, err)
	}
	return user, nil
}

// SaveUser stores the user snapshot as JSON. A nil user removes it.
func (s *SQLiteStore) SaveUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return s.remove(ctx, s.db, storage.KeyUserData)
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user snapshot: %w", err)
	}
	return s.set(ctx, s.db, storage.KeyUserData, string(raw))
}

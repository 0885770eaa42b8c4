// Package storage provides abstractions for the dashboard's durable local
// state: the bearer token pair and the signed-in user snapshot.
package storage

import (
	"context"
	"errors"

	"github.com/adpaws/dashboard/internal/models"
)

// Keys of the local state table.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserData     = "userData"
)

// ErrCorruptSnapshot is returned when the stored user snapshot cannot be
// decoded.
var ErrCorruptSnapshot = errors.New("stored user snapshot is corrupt")

// Store defines the interface for local state operations.
// Missing entries are not errors: Tokens returns an empty pair and User
// returns nil.
type Store interface {
	// Tokens returns the stored token pair.
	Tokens(ctx context.Context) (models.TokenPair, error)

	// SaveTokens replaces the stored token pair.
	SaveTokens(ctx context.Context, tokens models.TokenPair) error

	// ClearTokens removes both tokens, leaving the snapshot alone.
	ClearTokens(ctx context.Context) error

	// User returns the stored user snapshot.
	User(ctx context.Context) (*models.User, error)

	// SaveUser replaces the stored user snapshot.
	SaveUser(ctx context.Context, user *models.User) error

	// Clear removes tokens and snapshot.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

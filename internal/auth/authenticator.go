package auth

import (
	"context"

	"github.com/adpaws/dashboard/internal/models"
)

// Authenticator is the remote identity surface the session depends on.
// The GraphQL backend implements it; tests swap in fakes.
type Authenticator interface {
	// SignIn exchanges credentials for a token pair.
	SignIn(ctx context.Context, email, password string) (models.TokenPair, error)

	// CurrentUser resolves the user behind the stored access token.
	CurrentUser(ctx context.Context) (*models.User, error)
}

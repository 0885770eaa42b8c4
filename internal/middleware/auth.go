package middleware

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/adpaws/dashboard/internal/auth"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// userKey is the context key for the signed-in user snapshot.
const userKey contextKey = "user"

// ErrSessionLoading is returned while the session is still being restored.
var ErrSessionLoading = errors.New("session is still loading")

// WithUser returns ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// User extracts the signed-in user from the context, or nil.
func User(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if user := User(ctx); user != nil {
		return string(user.ID)
	}
	return ""
}

// GetCompanyID extracts the signed-in user's company from the context.
func GetCompanyID(ctx context.Context) models.ID {
	return User(ctx).CompanyID()
}

// RequireSession returns an interceptor that rejects calls without an
// authenticated session and adds the user snapshot to the context.
func RequireSession(r session.Reader) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			st := r.State()
			if st.IsLoading {
				return nil, connect.NewError(connect.CodeUnavailable, ErrSessionLoading)
			}
			if !st.IsAuthenticated {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}
			return next(WithUser(ctx, st.User), req)
		}
	}
}

// OptionalSession returns an interceptor that adds the user snapshot to the
// context when a session exists, but lets every call through.
func OptionalSession(r session.Reader) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if st := r.State(); st.IsAuthenticated {
				ctx = WithUser(ctx, st.User)
			}
			return next(ctx, req)
		}
	}
}

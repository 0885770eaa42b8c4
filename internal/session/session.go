// Package session owns the operator's process-wide session.
//
// A single Controller is created by main and is the only writer of the
// session state. Everything else (route guards, RPC interceptors, directory
// services) receives it as a Reader and only ever sees copies.
//
// The state machine is
//
//	Unknown (loading) -> Authenticated(user) | Unauthenticated
//
// and IsAuthenticated is always derived from the presence of a user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/adpaws/dashboard/internal/auth"
	"github.com/adpaws/dashboard/internal/graphql"
	"github.com/adpaws/dashboard/internal/metrics"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/storage"
)

// ErrSuperseded is returned by Login and RefetchUser when the session was
// logged out (or logged in again) while the identity call was in flight.
// The late result is dropped.
var ErrSuperseded = errors.New("session changed while resolving identity")

// State is a snapshot of the session.
type State struct {
	User            *models.User `json:"user,omitempty"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsLoading       bool         `json:"isLoading"`
}

// Reader is the read-only view of the session.
type Reader interface {
	State() State
}

// Option configures a Controller.
type Option func(*Controller)

// WithTokenInspector sets the inspector used to skip identity calls for
// locally expired access tokens.
func WithTokenInspector(i *auth.TokenInspector) Option {
	return func(c *Controller) {
		c.inspector = i
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller is the single writer of the session.
type Controller struct {
	store     storage.Store
	remote    auth.Authenticator
	inspector *auth.TokenInspector
	logger    *slog.Logger
	identity  singleflight.Group

	mu      sync.RWMutex
	user    *models.User
	loading bool
	// epoch changes on every login and logout so identity results that
	// resolve afterwards can be recognised and dropped.
	epoch uint64
}

var _ Reader = (*Controller)(nil)

// New creates a Controller in the loading state. Call Initialize once at
// startup.
func New(store storage.Store, remote auth.Authenticator, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		remote:    remote,
		inspector: auth.NewTokenInspector(0),
		logger:    slog.Default(),
		loading:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StoredToken returns a graphql.TokenSource that reads the access token
// from store on every request.
func StoredToken(store storage.Store) graphql.TokenSource {
	return graphql.TokenFunc(func(ctx context.Context) (string, error) {
		tokens, err := store.Tokens(ctx)
		if err != nil {
			return "", err
		}
		return tokens.AccessToken, nil
	})
}

// State implements Reader.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{
		User:            cloneUser(c.user),
		IsAuthenticated: c.user != nil,
		IsLoading:       c.loading,
	}
}

// Initialize restores the session from local state. It resolves the user
// through the identity query when a usable token pair is stored and clears
// everything otherwise. It never fails and always leaves the loading state.
func (c *Controller) Initialize(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.loading = false
		authenticated := c.user != nil
		c.mu.Unlock()
		metrics.SetAuthenticated(authenticated)
	}()

	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	tokens, err := c.store.Tokens(ctx)
	if err != nil {
		c.logger.Error("Failed to read stored tokens", "error", err)
		c.clearIf(ctx, epoch)
		return
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		c.logger.Info("No stored session")
		c.clearIf(ctx, epoch)
		return
	}
	if c.inspector.Expired(tokens.AccessToken) {
		c.logger.Info("Stored access token expired")
		c.clearIf(ctx, epoch)
		return
	}

	user, err := c.resolve(ctx, epoch)
	if err != nil {
		c.logger.Warn("Failed to restore session", "error", err)
		c.clearIf(ctx, epoch)
		return
	}
	if err := c.adopt(ctx, epoch, user); err != nil {
		c.logger.Warn("Dropped restored session", "error", err)
		return
	}
	c.logger.Info("Session restored", "user_id", user.ID, "email", user.Email)
}

// Login stores tokens and establishes the user. A non-nil snapshot is
// adopted as is; otherwise the user is resolved through the identity query.
// When resolution fails the just-stored tokens are removed and the error is
// returned.
func (c *Controller) Login(ctx context.Context, tokens models.TokenPair, snapshot *models.User) error {
	if tokens.AccessToken == "" {
		return auth.ErrMissingToken
	}

	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	err := c.store.SaveTokens(ctx, tokens)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	user := cloneUser(snapshot)
	if user == nil {
		user, err = c.resolve(ctx, epoch)
		if err != nil {
			c.dropTokensIf(ctx, epoch)
			return err
		}
	}

	if err := c.adopt(ctx, epoch, user); err != nil {
		return err
	}
	c.logger.Info("User logged in", "user_id", user.ID, "email", user.Email)
	return nil
}

// SignIn runs the sign-in mutation and logs in with the returned tokens.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	tokens, err := c.remote.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return c.Login(ctx, tokens, nil)
}

// Logout clears the stored tokens, the snapshot and the in-memory user.
// It makes no remote call.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.epoch++
	userID := models.ID("")
	if c.user != nil {
		userID = c.user.ID
	}
	c.clearLocked(ctx)
	c.mu.Unlock()

	c.logger.Info("User logged out", "user_id", userID)
}

// UpdateUser replaces the snapshot. Failures are logged and the previous
// snapshot is kept.
func (c *Controller) UpdateUser(ctx context.Context, user *models.User) {
	if user == nil {
		return
	}
	user = cloneUser(user)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.SaveUser(ctx, user); err != nil {
		c.logger.Error("Failed to update user snapshot", "user_id", user.ID, "error", err)
		return
	}
	c.user = user
	metrics.SetAuthenticated(true)
}

// RefetchUser re-derives the snapshot from the identity query. A rejected
// token ends the session; any other failure keeps the current snapshot.
// The error is returned for reporting only.
func (c *Controller) RefetchUser(ctx context.Context) error {
	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	user, err := c.resolve(ctx, epoch)
	if err != nil {
		if errors.Is(err, graphql.ErrUnauthenticated) {
			c.logger.Warn("Session rejected by backend", "error", err)
			c.clearIf(ctx, epoch)
		} else {
			c.logger.Error("Failed to refetch user", "error", err)
		}
		return err
	}
	return c.adopt(ctx, epoch, user)
}

// resolve runs the identity query. Concurrent callers of the same epoch
// share one request; a call started under older tokens is never joined.
func (c *Controller) resolve(ctx context.Context, epoch uint64) (*models.User, error) {
	key := "user:" + strconv.FormatUint(epoch, 10)
	v, err, _ := c.identity.Do(key, func() (any, error) {
		return c.remote.CurrentUser(ctx)
	})
	if err != nil {
		return nil, err
	}
	user, _ := v.(*models.User)
	if user == nil {
		return nil, fmt.Errorf("identity query returned no user")
	}
	return cloneUser(user), nil
}

// adopt persists user and makes it current, unless the epoch moved on.
func (c *Controller) adopt(ctx context.Context, epoch uint64, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrSuperseded
	}
	if err := c.store.SaveUser(ctx, user); err != nil {
		c.logger.Error("Failed to persist user snapshot", "user_id", user.ID, "error", err)
	}
	c.user = user
	metrics.SetAuthenticated(true)
	return nil
}

// clearIf drops the session unless the epoch moved on.
func (c *Controller) clearIf(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.clearLocked(ctx)
	}
}

// dropTokensIf removes the stored token pair and signs out in memory
// unless the epoch moved on.
func (c *Controller) dropTokensIf(ctx context.Context, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return
	}
	c.user = nil
	metrics.SetAuthenticated(false)
	if err := c.store.ClearTokens(ctx); err != nil {
		c.logger.Error("Failed to clear stored tokens", "error", err)
	}
}

func (c *Controller) clearLocked(ctx context.Context) {
	c.user = nil
	metrics.SetAuthenticated(false)
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("Failed to clear local state", "error", err)
	}
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Company != nil {
		company := *u.Company
		out.Company = &company
	}
	return &out
}

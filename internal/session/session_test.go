package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/adpaws/dashboard/internal/graphql"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/storage/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRemote struct {
	mu        sync.Mutex
	user      *models.User
	userErr   error
	tokens    models.TokenPair
	signInErr error
	calls     int

	// When entered is set, CurrentUser signals it and waits for release.
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRemote) SignIn(_ context.Context, email, password string) (models.TokenPair, error) {
	if f.signInErr != nil {
		return models.TokenPair{}, f.signInErr
	}
	return f.tokens, nil
}

func (f *fakeRemote) CurrentUser(context.Context) (*models.User, error) {
	f.mu.Lock()
	f.calls++
	user, err := f.user, f.userErr
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	return user, err
}

func (f *fakeRemote) setUser(u *models.User) {
	f.mu.Lock()
	f.user = u
	f.mu.Unlock()
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var ana = &models.User{
	ID:      "3",
	Email:   "ana@adpaws.mx",
	Name:    "Ana",
	Role:    models.RoleAdmin,
	Company: &models.Company{ID: "5", Name: "Ad Paws"},
}

var rejected = &graphql.RemoteError{Operation: "User", Messages: []string{"jwt expired"}, Codes: []string{"UNAUTHENTICATED"}}

func newController(t *testing.T, remote *fakeRemote) (*Controller, *sqlite.SQLiteStore) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, remote, WithLogger(logger)), store
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("no stored tokens", func(t *testing.T) {
		remote := &fakeRemote{user: ana}
		c, _ := newController(t, remote)
		require.True(t, c.State().IsLoading)

		c.Initialize(ctx)

		st := c.State()
		assert.False(t, st.IsLoading)
		assert.False(t, st.IsAuthenticated)
		assert.Zero(t, remote.callCount())
	})

	t.Run("stored tokens resolve the user", func(t *testing.T) {
		remote := &fakeRemote{user: ana}
		c, store := newController(t, remote)
		require.NoError(t, store.SaveTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))

		c.Initialize(ctx)

		st := c.State()
		assert.False(t, st.IsLoading)
		assert.True(t, st.IsAuthenticated)
		assert.Equal(t, ana.Email, st.User.Email)

		saved, err := store.User(ctx)
		require.NoError(t, err)
		assert.Equal(t, ana.ID, saved.ID)
	})

	t.Run("identity failure clears the stale snapshot", func(t *testing.T) {
		remote := &fakeRemote{userErr: rejected}
		c, store := newController(t, remote)
		require.NoError(t, store.SaveTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))
		require.NoError(t, store.SaveUser(ctx, ana))

		c.Initialize(ctx)

		st := c.State()
		assert.False(t, st.IsLoading)
		assert.False(t, st.IsAuthenticated)
		saved, err := store.User(ctx)
		require.NoError(t, err)
		assert.Nil(t, saved)
		tokens, _ := store.Tokens(ctx)
		assert.True(t, tokens.Empty())
	})

	t.Run("locally expired token skips the identity call", func(t *testing.T) {
		remote := &fakeRemote{user: ana}
		c, store := newController(t, remote)
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}).SignedString([]byte("k"))
		require.NoError(t, err)
		require.NoError(t, store.SaveTokens(ctx, models.TokenPair{AccessToken: expired, RefreshToken: "r"}))

		c.Initialize(ctx)

		assert.False(t, c.State().IsAuthenticated)
		assert.False(t, c.State().IsLoading)
		assert.Zero(t, remote.callCount())
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot is adopted without a remote call", func(t *testing.T) {
		remote := &fakeRemote{}
		c, store := newController(t, remote)

		require.NoError(t, c.Login(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, ana))

		assert.True(t, c.State().IsAuthenticated)
		assert.Zero(t, remote.callCount())
		tokens, _ := store.Tokens(ctx)
		assert.Equal(t, "a", tokens.AccessToken)
	})

	t.Run("identity resolution failure removes the tokens", func(t *testing.T) {
		remote := &fakeRemote{userErr: errors.New("backend down")}
		c, store := newController(t, remote)

		err := c.Login(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)
		require.Error(t, err)

		assert.False(t, c.State().IsAuthenticated)
		tokens, _ := store.Tokens(ctx)
		assert.True(t, tokens.Empty())
	})

	t.Run("missing access token", func(t *testing.T) {
		c, _ := newController(t, &fakeRemote{})
		err := c.Login(ctx, models.TokenPair{}, ana)
		require.Error(t, err)
		assert.False(t, c.State().IsAuthenticated)
	})

	t.Run("logout while resolving drops the late user", func(t *testing.T) {
		remote := &fakeRemote{
			user:    ana,
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		c, store := newController(t, remote)

		done := make(chan error, 1)
		go func() {
			done <- c.Login(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)
		}()

		<-remote.entered
		c.Logout(ctx)
		close(remote.release)

		require.ErrorIs(t, <-done, ErrSuperseded)
		assert.False(t, c.State().IsAuthenticated)
		saved, _ := store.User(ctx)
		assert.Nil(t, saved)
	})
}

func TestLoginDuringStaleRefetch(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{
		user:    ana,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c, store := newController(t, remote)
	require.NoError(t, c.Login(ctx, models.TokenPair{AccessToken: "tok-a", RefreshToken: "r"}, ana))

	refetched := make(chan error, 1)
	go func() { refetched <- c.RefetchUser(ctx) }()
	<-remote.entered

	c.Logout(ctx)
	beto := &models.User{ID: "4", Email: "beto@adpaws.mx", Name: "Beto"}
	remote.setUser(beto)

	loggedIn := make(chan error, 1)
	go func() { loggedIn <- c.Login(ctx, models.TokenPair{AccessToken: "tok-b", RefreshToken: "r"}, nil) }()

	// The login runs its own identity call instead of joining the old one.
	select {
	case <-remote.entered:
	case <-time.After(5 * time.Second):
		close(remote.release)
		t.Fatal("login joined the identity call started before it")
	}
	close(remote.release)

	require.ErrorIs(t, <-refetched, ErrSuperseded)
	require.NoError(t, <-loggedIn)

	st := c.State()
	require.True(t, st.IsAuthenticated)
	assert.Equal(t, beto.ID, st.User.ID)
	saved, _ := store.User(ctx)
	assert.Equal(t, beto.ID, saved.ID)
	tokens, _ := store.Tokens(ctx)
	assert.Equal(t, "tok-b", tokens.AccessToken)
	assert.Equal(t, 2, remote.callCount())
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	remote := &fakeRemote{user: ana, tokens: models.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	c, _ := newController(t, remote)
	require.NoError(t, c.SignIn(ctx, "ana@adpaws.mx", "secret"))
	assert.Equal(t, ana.ID, c.State().User.ID)

	bad := &fakeRemote{signInErr: &graphql.RemoteError{Operation: "SignInUser", Messages: []string{"Credenciales inválidas"}}}
	c2, _ := newController(t, bad)
	err := c2.SignIn(ctx, "ana@adpaws.mx", "nope")
	var remoteErr *graphql.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.False(t, c2.State().IsAuthenticated)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	c, store := newController(t, remote)
	require.NoError(t, c.Login(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, ana))

	c.Logout(ctx)

	st := c.State()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Zero(t, remote.callCount(), "logout makes no remote call")
	tokens, _ := store.Tokens(ctx)
	saved, _ := store.User(ctx)
	assert.True(t, tokens.Empty())
	assert.Nil(t, saved)

	// Logging out twice is harmless.
	c.Logout(ctx)
	assert.False(t, c.State().IsAuthenticated)
}

func TestRefetchUser(t *testing.T) {
	ctx := context.Background()

	t.Run("transient failure keeps the snapshot", func(t *testing.T) {
		remote := &fakeRemote{userErr: errors.New("timeout")}
		c, _ := newController(t, remote)
		require.NoError(t, c.Login(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, ana))

		require.Error(t, c.RefetchUser(ctx))
		assert.True(t, c.State().IsAuthenticated)
	})

	t.Run("rejected token ends the session", func(t *testing.T) {
		remote := &fakeRemote{userErr: rejected}
		c, store := newController(t, remote)
		require.NoError(t, c.Login(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, ana))

		require.Error(t, c.RefetchUser(ctx))
		assert.False(t, c.State().IsAuthenticated)
		tokens, _ := store.Tokens(ctx)
		assert.True(t, tokens.Empty())
	})

	t.Run("success replaces the snapshot", func(t *testing.T) {
		renamed := *ana
		renamed.Name = "Ana María"
		remote := &fakeRemote{user: &renamed}
		c, store := newController(t, remote)
		require.NoError(t, c.Login(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}, ana))

		require.NoError(t, c.RefetchUser(ctx))
		assert.Equal(t, "Ana María", c.State().User.Name)
		saved, _ := store.User(ctx)
		assert.Equal(t, "Ana María", saved.Name)
	})
}

func TestUpdateUserAndCopies(t *testing.T) {
	ctx := context.Background()
	c, store := newController(t, &fakeRemote{})

	c.UpdateUser(ctx, ana)
	st := c.State()
	require.True(t, st.IsAuthenticated)

	st.User.Name = "mutated"
	st.User.Company.Name = "mutated"
	again := c.State()
	assert.Equal(t, "Ana", again.User.Name)
	assert.Equal(t, "Ad Paws", again.User.Company.Name)

	saved, _ := store.User(ctx)
	assert.Equal(t, "Ana", saved.Name)

	c.UpdateUser(ctx, nil)
	assert.True(t, c.State().IsAuthenticated)
}

func TestStoredToken(t *testing.T) {
	ctx := context.Background()
	_, store := newController(t, &fakeRemote{})
	require.NoError(t, store.SaveTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}))

	token, err := StoredToken(store).AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", token)
}

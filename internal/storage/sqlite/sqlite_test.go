package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "state", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("empty store has no tokens and no user", func(t *testing.T) {
		tokens, err := store.Tokens(ctx)
		if err != nil {
			t.Fatalf("Tokens failed: %v", err)
		}
		if !tokens.Empty() {
			t.Errorf("Expected empty tokens, got %+v", tokens)
		}
		user, err := store.User(ctx)
		if err != nil {
			t.Fatalf("User failed: %v", err)
		}
		if user != nil {
			t.Errorf("Expected no user, got %+v", user)
		}
	})

	t.Run("SaveTokens round trip and overwrite", func(t *testing.T) {
		if err := store.SaveTokens(ctx, models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
			t.Fatalf("SaveTokens failed: %v", err)
		}
		if err := store.SaveTokens(ctx, models.TokenPair{AccessToken: "a2", RefreshToken: "r2"}); err != nil {
			t.Fatalf("SaveTokens failed: %v", err)
		}
		got, err := store.Tokens(ctx)
		if err != nil {
			t.Fatalf("Tokens failed: %v", err)
		}
		want := models.TokenPair{AccessToken: "a2", RefreshToken: "r2"}
		if got != want {
			t.Errorf("Tokens = %+v, want %+v", got, want)
		}
	})

	t.Run("SaveTokens with an empty refresh token removes it", func(t *testing.T) {
		if err := store.SaveTokens(ctx, models.TokenPair{AccessToken: "a3"}); err != nil {
			t.Fatalf("SaveTokens failed: %v", err)
		}
		got, _ := store.Tokens(ctx)
		if got.RefreshToken != "" {
			t.Errorf("Expected refresh token to be removed, got %q", got.RefreshToken)
		}
	})

	t.Run("SaveUser round trip", func(t *testing.T) {
		user := &models.User{
			ID:      "3",
			Email:   "ana@adpaws.mx",
			Name:    "Ana",
			Role:    models.RoleAdmin,
			Company: &models.Company{ID: "5", Name: "Ad Paws"},
		}
		if err := store.SaveUser(ctx, user); err != nil {
			t.Fatalf("SaveUser failed: %v", err)
		}
		got, err := store.User(ctx)
		if err != nil {
			t.Fatalf("User failed: %v", err)
		}
		if got == nil || got.Email != user.Email || got.CompanyID() != "5" {
			t.Errorf("User = %+v, want %+v", got, user)
		}
	})

	t.Run("ClearTokens keeps the snapshot", func(t *testing.T) {
		if err := store.ClearTokens(ctx); err != nil {
			t.Fatalf("ClearTokens failed: %v", err)
		}
		tokens, _ := store.Tokens(ctx)
		if !tokens.Empty() {
			t.Errorf("Expected tokens cleared, got %+v", tokens)
		}
		if user, _ := store.User(ctx); user == nil {
			t.Error("Expected snapshot to survive ClearTokens")
		}
	})

	t.Run("Clear removes everything", func(t *testing.T) {
		store.SaveTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"})
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		tokens, _ := store.Tokens(ctx)
		user, _ := store.User(ctx)
		if !tokens.Empty() || user != nil {
			t.Errorf("Expected empty state, got tokens=%+v user=%+v", tokens, user)
		}
	})
}

func TestCorruptSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.set(ctx, store.db, storage.KeyUserData, "{not json"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	_, err := store.User(ctx)
	if !errors.Is(err, storage.ErrCorruptSnapshot) {
		t.Errorf("User error = %v, want ErrCorruptSnapshot", err)
	}
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := New(path)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := first.SaveTokens(ctx, models.TokenPair{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("SaveTokens failed: %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer second.Close()
	tokens, err := second.Tokens(ctx)
	if err != nil {
		t.Fatalf("Tokens failed: %v", err)
	}
	if tokens.AccessToken != "a" {
		t.Errorf("AccessToken = %q, want %q", tokens.AccessToken, "a")
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/adpaws/dashboard/internal/config"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/storage"
)

// runWhoami prints the signed-in user. Offline it prints the stored
// snapshot without asking the backend.
func runWhoami(ctx context.Context, out io.Writer, cfg *config.Config, offline bool) error {
	d, err := openDeps(cfg)
	if err != nil {
		return err
	}
	defer d.store.Close()

	var user *models.User
	if offline {
		if user, err = storedUser(ctx, d.store); err != nil {
			return err
		}
	} else {
		d.session.Initialize(ctx)
		user = d.session.State().User
	}
	if user == nil {
		_, err := fmt.Fprintln(out, "Not signed in")
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(user)
}

// storedUser returns the snapshot, or nil when no token pair backs it.
func storedUser(ctx context.Context, store storage.Store) (*models.User, error) {
	tokens, err := store.Tokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored tokens: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, nil
	}
	user, err := store.User(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read user snapshot: %w", err)
	}
	return user, nil
}

func runLogout(ctx context.Context, out io.Writer, cfg *config.Config) error {
	d, err := openDeps(cfg)
	if err != nil {
		return err
	}
	defer d.store.Close()

	d.session.Logout(ctx)
	_, err = fmt.Fprintln(out, "Signed out")
	return err
}

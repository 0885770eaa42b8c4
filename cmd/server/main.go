package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adpaws/dashboard/internal/auth"
	"github.com/adpaws/dashboard/internal/backend"
	"github.com/adpaws/dashboard/internal/config"
	"github.com/adpaws/dashboard/internal/graphql"
	"github.com/adpaws/dashboard/internal/session"
	"github.com/adpaws/dashboard/internal/storage/sqlite"
	"github.com/adpaws/dashboard/pkg/logging"
)

var _ auth.Authenticator = (*backend.API)(nil)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:          "adpaws-dashboard",
		Short:        "Ad Paws admin dashboard server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
			logging.Setup(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ADPAWS_CONFIG"), "path to a YAML config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	var offline bool
	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Restore the stored session and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), cmd.OutOrStdout(), cfg, offline)
		},
	}
	whoami.Flags().BoolVar(&offline, "offline", false, "print the stored snapshot without calling the backend")
	logout := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored tokens and user snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
	root.AddCommand(serve, whoami, logout)
	return root
}

// deps are the pieces every command shares.
type deps struct {
	store   *sqlite.SQLiteStore
	api     *backend.API
	session *session.Controller
}

func openDeps(cfg *config.Config) (*deps, error) {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)

	gql := graphql.New(cfg.Backend.GraphQLEndpoint(),
		graphql.WithHTTPClient(&http.Client{Transport: http.DefaultTransport}),
		graphql.WithTimeout(cfg.Backend.Timeout),
		graphql.WithTokenSource(session.StoredToken(store)),
	)
	api := backend.New(gql)

	ctrl := session.New(store, api,
		session.WithTokenInspector(auth.NewTokenInspector(cfg.Session.TokenLeeway)),
		session.WithLogger(slog.Default()),
	)
	return &deps{store: store, api: api, session: ctrl}, nil
}

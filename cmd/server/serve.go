package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/adpaws/dashboard/internal/config"
	"github.com/adpaws/dashboard/internal/guard"
	"github.com/adpaws/dashboard/internal/metrics"
	"github.com/adpaws/dashboard/internal/middleware"
	"github.com/adpaws/dashboard/internal/models"
	"github.com/adpaws/dashboard/internal/rpc"
	"github.com/adpaws/dashboard/internal/service"
	"github.com/adpaws/dashboard/internal/session"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, cfg *config.Config) error {
	d, err := openDeps(cfg)
	if err != nil {
		return err
	}
	defer d.store.Close()

	// Pages answer with the loading screen until this returns.
	go d.session.Initialize(ctx)

	checkIn := service.NewCheckInService(d.api, models.DefaultAddOns)
	signup := service.NewSignupService(d.api, d.session, models.ID(cfg.Wizards.SignupCompanyID))
	directory := service.NewDirectoryService(d.api)
	authSvc := service.NewAuthService(d.session, slog.Default())

	jobs := cron.New()
	if err := service.ScheduleSweeps(jobs, cfg.Wizards.SweepSchedule, cfg.Wizards.IdleTTL, checkIn.Wizards(), signup.Wizards()); err != nil {
		return err
	}
	if err := scheduleRefetch(ctx, jobs, cfg.Session.RefetchSchedule, d.session); err != nil {
		return err
	}
	jobs.Start()
	defer jobs.Stop()

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		return fmt.Errorf("failed to resolve static path: %w", err)
	}
	slog.Info("Serving static files", "path", staticDir)

	router := chi.NewRouter()

	// Register Connect services
	public := connect.WithInterceptors(
		middleware.OptionalSession(d.session),
		middleware.RateLimit(rate.Limit(cfg.Login.PerMinute/60), cfg.Login.Burst, service.LoginProcedure),
		middleware.LoggingInterceptor(),
	)
	private := connect.WithInterceptors(
		middleware.RequireSession(d.session),
		middleware.LoggingInterceptor(),
	)
	mountRPC(router, authSvc.Handler, public)
	mountRPC(router, signup.Handler, public)
	mountRPC(router, checkIn.Handler, private)
	mountRPC(router, directory.Handler, private)

	router.Get("/healthz", healthz(d.session))
	if cfg.Metrics.Enabled {
		router.Handle("/metrics", metrics.Handler())
	}

	guard.Mount(router, d.session, indexPage(staticDir))
	router.NotFound(staticFiles(staticDir).ServeHTTP)

	var handler http.Handler = router
	handler = middleware.CORS(cfg.Frontend.AllowedOrigins)(handler)
	handler = middleware.RequestLogger(handler)
	handler = metrics.InstrumentHandler(handler)

	// h2c serves HTTP/2 without TLS, which Connect clients may use.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", cfg.Addr, "backend", cfg.Backend.GraphQLEndpoint())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type handlerFunc func(...connect.HandlerOption) (string, http.Handler)

func mountRPC(r chi.Router, h handlerFunc, opts ...connect.HandlerOption) {
	path, handler := h(opts...)
	r.Handle(path+"*", handler)
}

// scheduleRefetch keeps the user snapshot fresh while signed in. An empty
// spec disables it.
func scheduleRefetch(ctx context.Context, c *cron.Cron, spec string, ctrl *session.Controller) error {
	if spec == "" {
		return nil
	}
	_, err := c.AddFunc(spec, func() {
		if !ctrl.State().IsAuthenticated {
			return
		}
		if err := ctrl.RefetchUser(ctx); err != nil {
			slog.Warn("Scheduled user refetch failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule user refetch %q: %w", spec, err)
	}
	return nil
}

func healthz(r session.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		st := r.State()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        "ok",
			"sessionLoaded": !st.IsLoading,
			"authenticated": st.IsAuthenticated,
		})
	}
}

// indexPage serves the frontend entry point for every page route.
func indexPage(staticDir string) http.Handler {
	index := filepath.Join(staticDir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, index)
	})
}

// staticFiles serves built assets, falling back to the entry point for
// unknown client-side paths.
func staticFiles(staticDir string) http.Handler {
	page := indexPage(staticDir)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/"+rpc.Package+".") {
			http.NotFound(w, r)
			return
		}

		filePath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			page.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filePath)
	})
}

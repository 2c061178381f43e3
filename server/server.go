package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cnosuke/sheet-gallery/config"
	"github.com/cnosuke/sheet-gallery/fetcher"
	"github.com/cnosuke/sheet-gallery/gallery"
	"github.com/cnosuke/sheet-gallery/views"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewLoader - Build the gallery loader described by cfg
func NewLoader(cfg *config.Config) (*gallery.Loader, error) {
	zap.S().Debugw("creating HTTP Fetcher")
	httpFetcher, err := fetcher.NewHTTPFetcher(&fetcher.Config{
		Timeout:    cfg.Fetch.Timeout,
		UserAgent:  cfg.Fetch.UserAgent,
		MaxWorkers: cfg.Fetch.MaxWorkers,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP fetcher")
	}

	return gallery.NewLoader(httpFetcher, cfg.Gallery.Endpoint, gallery.Options{
		ProbeImages: cfg.Gallery.ProbeImages,
	}), nil
}

// Run - Serve the gallery over HTTP until ctx is canceled
func Run(ctx context.Context, cfg *config.Config, version string) error {
	zap.S().Infow("starting gallery server",
		"addr", cfg.Server.Addr,
		"endpoint", cfg.Gallery.Endpoint,
		"version", version)

	loader, err := NewLoader(cfg)
	if err != nil {
		zap.S().Errorw("failed to create loader", "error", err)
		return err
	}

	tmpl, err := views.Parse()
	if err != nil {
		zap.S().Errorw("failed to parse templates", "error", err)
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           NewRouter(loader, tmpl, cfg.Gallery.Title),
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		zap.S().Errorw("failed to start server", "error", err)
		return errors.Wrap(err, "failed to start server")
	case <-ctx.Done():
	}

	zap.S().Infow("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}
	return nil
}

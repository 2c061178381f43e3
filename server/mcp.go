package server

import (
	"context"
	"time"

	"github.com/cnosuke/sheet-gallery/config"
	"github.com/cnosuke/sheet-gallery/server/tools"
	"github.com/cnosuke/sheet-gallery/views"
	"github.com/cockroachdb/errors"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"go.uber.org/zap"
)

// RunMCP - Expose the gallery as an MCP tool over stdio until ctx is canceled
func RunMCP(ctx context.Context, cfg *config.Config) error {
	zap.S().Infow("starting MCP gallery server", "endpoint", cfg.Gallery.Endpoint)

	loader, err := NewLoader(cfg)
	if err != nil {
		zap.S().Errorw("failed to create loader", "error", err)
		return err
	}

	tmpl, err := views.Parse()
	if err != nil {
		return err
	}

	mcpServer := mcp.NewServer(stdio.NewStdioServerTransport())

	zap.S().Debugw("registering tools")
	if err := tools.RegisterAllTools(ctx, mcpServer, loader, tmpl, tools.Options{
		Title:   cfg.Gallery.Title,
		Timeout: time.Duration(cfg.MCP.Timeout) * time.Second,
	}); err != nil {
		zap.S().Errorw("failed to register tools", "error", err)
		return err
	}

	if err := mcpServer.Serve(); err != nil {
		zap.S().Errorw("failed to start server", "error", err)
		return errors.Wrap(err, "failed to start server")
	}

	// Serve returns once the transport is running.
	<-ctx.Done()
	zap.S().Infow("server shutting down")
	return nil
}

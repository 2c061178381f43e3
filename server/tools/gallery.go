package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cnosuke/sheet-gallery/gallery"
	"github.com/cnosuke/sheet-gallery/views"
	"github.com/cockroachdb/errors"
	mcp "github.com/metoro-io/mcp-golang"
	"go.uber.org/zap"
)

// LoadGalleryArgs - Arguments for load_gallery tool
type LoadGalleryArgs struct {
	Format string `json:"format,omitempty" jsonschema:"description=Output format: json (default) or markdown"`
}

// PageLoader defines the interface for loading the gallery page
type PageLoader interface {
	Load(ctx context.Context) *gallery.Page
}

// MarkdownRenderer defines the interface for rendering a page as Markdown
type MarkdownRenderer interface {
	RenderMarkdown(data *views.GalleryData) (string, error)
}

// Options - Settings shared by every load_gallery call
type Options struct {
	Title string
	// Timeout bounds a single load. Zero leaves it bounded only by the server context.
	Timeout time.Duration
}

// RegisterLoadGalleryTool - Register the load_gallery tool. Loads run under ctx,
// so they are canceled when the server stops.
func RegisterLoadGalleryTool(ctx context.Context, mcpServer *mcp.Server, loader PageLoader, renderer MarkdownRenderer, opts Options) error {
	zap.S().Debugw("registering load_gallery tool", "timeout", opts.Timeout)
	err := mcpServer.RegisterTool("load_gallery", "Loads the image gallery from the configured endpoint and returns its cards",
		loadGalleryHandler(ctx, loader, renderer, opts))

	if err != nil {
		zap.S().Errorw("failed to register load_gallery tool", "error", err)
		return errors.Wrap(err, "failed to register load_gallery tool")
	}

	return nil
}

func loadGalleryHandler(ctx context.Context, loader PageLoader, renderer MarkdownRenderer, opts Options) func(args LoadGalleryArgs) (*mcp.ToolResponse, error) {
	return func(args LoadGalleryArgs) (*mcp.ToolResponse, error) {
		zap.S().Infow("executing load_gallery", "format", args.Format)

		loadCtx := ctx
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		page := loader.Load(loadCtx)

		switch args.Format {
		case "", "json":
			jsonResponse, err := json.Marshal(page)
			if err != nil {
				zap.S().Errorw("failed to marshal page to JSON", "error", err)
				return nil, errors.Wrap(err, "failed to marshal page to JSON")
			}
			return mcp.NewToolResponse(mcp.NewTextContent(string(jsonResponse))), nil
		case "markdown":
			markdown, err := renderer.RenderMarkdown(&views.GalleryData{Title: opts.Title, Page: page})
			if err != nil {
				zap.S().Errorw("failed to render page as Markdown", "error", err)
				return nil, errors.Wrap(err, "failed to render page as Markdown")
			}
			return mcp.NewToolResponse(mcp.NewTextContent(markdown)), nil
		default:
			return nil, errors.Newf("unsupported format %q: use json or markdown", args.Format)
		}
	}
}

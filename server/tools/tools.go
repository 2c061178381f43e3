package tools

import (
	"context"

	mcp "github.com/metoro-io/mcp-golang"
)

// RegisterAllTools - Register all tools with the server
func RegisterAllTools(ctx context.Context, mcpServer *mcp.Server, loader PageLoader, renderer MarkdownRenderer, opts Options) error {
	// Register load_gallery tool
	if err := RegisterLoadGalleryTool(ctx, mcpServer, loader, renderer, opts); err != nil {
		return err
	}

	return nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cnosuke/sheet-gallery/config"
	"github.com/cnosuke/sheet-gallery/logger"
	"github.com/cnosuke/sheet-gallery/server"
	"github.com/cnosuke/sheet-gallery/views"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	Version  = "0.0.1"
	Revision = "xxx"
)

const name = "sheet-gallery"

func main() {
	app := &cli.App{
		Name:    name,
		Usage:   "Render an image gallery from a JSON endpoint",
		Version: versionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the config file",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the gallery page over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address, overrides server.addr"},
				},
				Action: withConfig(func(ctx context.Context, c *cli.Context, cfg *config.Config) error {
					if addr := c.String("addr"); addr != "" {
						cfg.Server.Addr = addr
					}
					return server.Run(ctx, cfg, versionString())
				}),
			},
			{
				Name:  "render",
				Usage: "load the gallery once and write it to a file or stdout",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "html", Usage: "html, markdown or json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
				},
				Action: withConfig(func(ctx context.Context, c *cli.Context, cfg *config.Config) error {
					out := io.Writer(os.Stdout)
					if path := c.String("output"); path != "" {
						f, err := os.Create(path)
						if err != nil {
							return errors.Wrap(err, "failed to create output file")
						}
						defer f.Close()
						out = f
					}
					return render(ctx, cfg, c.String("format"), out)
				}),
			},
			{
				Name:  "mcp",
				Usage: "expose the gallery as an MCP tool over stdio",
				Action: withConfig(func(ctx context.Context, c *cli.Context, cfg *config.Config) error {
					return server.RunMCP(ctx, cfg)
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionString() string {
	if Revision != "" && Revision != "xxx" {
		return Version + " (" + Revision + ")"
	}
	return Version
}

func withConfig(fn func(ctx context.Context, c *cli.Context, cfg *config.Config) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}

		flush := logger.Init(cfg.Log.Debug || c.Bool("debug"))
		defer flush()

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return fn(ctx, c, cfg)
	}
}

func render(ctx context.Context, cfg *config.Config, format string, out io.Writer) error {
	loader, err := server.NewLoader(cfg)
	if err != nil {
		return err
	}
	tmpl, err := views.Parse()
	if err != nil {
		return err
	}

	page := loader.Load(ctx)
	data := &views.GalleryData{Title: cfg.Gallery.Title, Page: page}

	buf := &bytes.Buffer{}
	switch format {
	case "html":
		err = tmpl.Execute(buf, data)
	case "markdown", "md":
		var markdown string
		markdown, err = tmpl.RenderMarkdown(data)
		buf.WriteString(markdown)
	case "json":
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(page)
	default:
		return errors.Newf("unsupported format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to render %s", format)
	}

	if _, err := buf.WriteTo(out); err != nil {
		return errors.Wrap(err, "failed to write output")
	}

	zap.S().Infow("gallery rendered",
		"format", format,
		"state", page.State.String(),
		"cards", len(page.Container.Cards))
	return nil
}

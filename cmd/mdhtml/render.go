package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pkt.systems/mdhtml"
	"pkt.systems/mdhtml/internal/config"
	"pkt.systems/mdhtml/internal/watch"
)

type renderFlags struct {
	output string
	title  string
	watch  bool
}

func newRenderCmd(a *app) *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render [inputs...]",
		Short: "Render Markdown to HTML",
		Long: `Render Markdown files, file:// or http(s) URLs to HTML. Inputs are
concatenated; with no inputs Markdown is read from stdin.

With --watch the inputs are re-rendered to --output whenever they change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"render.front_matter": "front-matter",
				"render.sanitize":     "sanitize",
				"render.document":     "document",
				"watch.debounce":      "debounce",
			})
			if err != nil {
				return err
			}
			opts := renderOptions(cfg, f.title)
			in, err := parseInputs(a.stdin, args)
			if err != nil {
				return usageErrorf("%v", err)
			}
			if f.watch {
				logger, err := a.logger()
				if err != nil {
					return err
				}
				return a.watchRender(cmd.Context(), logger, cfg, in, f.output, opts)
			}
			return a.renderOnce(cmd.Context(), in, f.output, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "Output file instead of stdout")
	flags.Bool("front-matter", true, "Strip a leading YAML/TOML/JSON front matter block")
	flags.Bool("sanitize", false, "Sanitize the HTML with a user-content policy")
	flags.Bool("document", false, "Wrap the output in a standalone HTML document")
	flags.StringVar(&f.title, "title", "", "Document title (implies --document)")
	flags.BoolVarP(&f.watch, "watch", "w", false, "Re-render when input files change (requires --output)")
	flags.Duration("debounce", watch.DefaultDebounce, "Quiet period before re-rendering in --watch mode")
	return cmd
}

func renderOptions(cfg *config.Config, title string) []mdhtml.RenderOption {
	opts := []mdhtml.RenderOption{mdhtml.WithFrontMatter(cfg.Render.FrontMatter)}
	if cfg.Render.Sanitize {
		opts = append(opts, mdhtml.WithSanitizer(mdhtml.SanitizePolicy()))
	}
	if cfg.Render.Document || title != "" {
		opts = append(opts, mdhtml.WithDocument(title))
	}
	return opts
}

func (a *app) renderOnce(ctx context.Context, in inputSet, output string, opts []mdhtml.RenderOption) error {
	var buf bytes.Buffer
	if u, ok := in.remoteURL(); ok {
		if err := mdhtml.HTTPConvert(ctx, mdhtml.HTTPConvertRequest{
			URL:     u,
			Writer:  &buf,
			Options: opts,
		}); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	} else {
		reader := in.open(ctx)
		defer func() { _ = reader.Close() }()
		if err := mdhtml.Convert(mdhtml.ConvertRequest{
			Reader:  reader,
			Writer:  &buf,
			Options: opts,
		}); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	if err := writeOutput(a.stdout, output, buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (a *app) watchRender(ctx context.Context, logger *slog.Logger, cfg *config.Config, in inputSet, output string, opts []mdhtml.RenderOption) error {
	if output == "" {
		return usageErrorf("--watch requires --output")
	}
	paths := in.localPaths()
	if len(paths) == 0 {
		return usageErrorf("--watch needs at least one local input file")
	}

	if err := a.renderOnce(ctx, in, output, opts); err != nil {
		return err
	}
	logger.Info("rendered", "output", output)

	w := watch.Watcher{Debounce: cfg.Watch.Debounce, Logger: logger}
	return w.Run(ctx, paths, func(changed []string) {
		if err := a.renderOnce(ctx, in, output, opts); err != nil {
			logger.Error("render failed, keeping previous output", "err", err)
			return
		}
		logger.Info("rendered", "output", output, "changed", changed)
	})
}

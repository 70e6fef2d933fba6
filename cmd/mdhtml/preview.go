package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/mdhtml/internal/config"
	"pkt.systems/mdhtml/internal/preview"
)

func newPreviewCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a project file the way the preview pane shows it",
		Long: `Preview renders .md files as HTML, pretty prints .json files and shows
anything else as escaped preformatted text.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"preview.engine":      "engine",
				"preview.sanitize":    "sanitize",
				"preview.max_bytes":   "max-bytes",
				"render.front_matter": "front-matter",
			})
			if err != nil {
				return err
			}
			p, err := newPreviewer(cfg)
			if err != nil {
				return err
			}
			result := p.File(expandPath(args[0]))
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(a.stdout, result.HTML)
			}
			if result.Kind == preview.KindError {
				return fmt.Errorf("preview: %s", result.Error)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.String("engine", "basic", "Markdown engine: basic|gfm")
	flags.Bool("sanitize", false, "Sanitize rendered Markdown")
	flags.Int64("max-bytes", 10<<20, "Largest file to preview")
	flags.Bool("front-matter", true, "Hide a leading front matter block")
	flags.BoolVar(&asJSON, "json", false, "Print the preview as JSON")
	return cmd
}

func newPreviewer(cfg *config.Config) (*preview.Previewer, error) {
	p, err := preview.New(preview.Options{
		Engine:           preview.Engine(cfg.Preview.Engine),
		Sanitize:         cfg.Preview.Sanitize,
		StripFrontMatter: cfg.Render.FrontMatter,
		MaxBytes:         cfg.Preview.MaxBytes,
	})
	if err != nil {
		return nil, usageError{err: err}
	}
	return p, nil
}

package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/mdhtml/internal/registry"
	"pkt.systems/mdhtml/internal/server"
	"pkt.systems/mdhtml/internal/watch"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render, preview and project API over HTTP",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"server.addr":      "addr",
				"preview.engine":   "engine",
				"preview.sanitize": "sanitize",
				"watch.debounce":   "debounce",
			})
			if err != nil {
				return err
			}
			logger, err := a.logger()
			if err != nil {
				return err
			}
			previewer, err := newPreviewer(cfg)
			if err != nil {
				return err
			}
			var store *registry.Store
			registryPath := ""
			if s, err := a.openRegistry(cfg); err != nil {
				logger.Warn("project registry unavailable", "err", err)
			} else {
				store = s
				registryPath = store.Path()
				defer store.Close()
			}
			logger.Info("starting server",
				"addr", cfg.Server.Addr,
				"engine", previewer.Engine(),
				"registry", registryPath,
			)
			srv, err := server.New(server.Options{
				Previewer: previewer,
				Registry:  store,
				Render:    renderOptions(cfg, ""),
				Debounce:  cfg.Watch.Debounce,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}
	flags := cmd.Flags()
	flags.String("addr", "127.0.0.1:7878", "Listen address")
	flags.String("engine", "basic", "Markdown engine for previews: basic|gfm")
	flags.Bool("sanitize", false, "Sanitize rendered previews")
	flags.Duration("debounce", watch.DefaultDebounce, "Live-reload debounce")
	return cmd
}

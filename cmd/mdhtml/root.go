package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pkt.systems/mdhtml/internal/config"
	"pkt.systems/mdhtml/internal/registry"
	"pkt.systems/version"
)

// app carries the streams and global flags shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile string
	logLevel   string
	noColor    bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "mdhtml",
		Short: "Markdown to HTML renderer and Agent-SDD project browser",
		Long: `mdhtml renders Markdown to HTML and reads Agent-SDD project trees:
specs and their task lists, .agent-sdd sections and file previews.

Settings come from ~/.config/mdhtml/config.yaml (or --config), MDHTML_*
environment variables and command flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.noColor || !isTerminal(a.stdout) {
				color.NoColor = true
			}
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err: err}
	})
	root.SetHelpTemplate(version.Module() + " " + version.Current() + "\n\n" + root.HelpTemplate())

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default "+config.UserConfigPath()+")")
	pf.StringVar(&a.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	pf.String("registry", "", "Project registry database (default "+registry.DefaultPath()+")")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newRenderCmd(a),
		newPreviewCmd(a),
		newSpecsCmd(a),
		newScanCmd(a),
		newDirsCmd(a),
		newProjectsCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// loadConfig resolves configuration, binding the named flags of cmd to
// config keys.
func (a *app) loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, error) {
	flags := map[string]*pflag.Flag{}
	for key, name := range keys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}
	if f := cmd.Flags().Lookup("registry"); f != nil {
		flags["registry.path"] = f
	}
	file := ""
	if a.configFile != "" {
		file = expandPath(a.configFile)
	}
	cfg, err := config.Load(config.Options{File: file, Flags: flags})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (a *app) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(a.logLevel))); err != nil {
		return nil, usageErrorf("invalid --log-level %q", a.logLevel)
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})), nil
}

func (a *app) openRegistry(cfg *config.Config) (*registry.Store, error) {
	path := cfg.Registry.Path
	if path == "" {
		path = registry.DefaultPath()
	}
	store, err := registry.Open(expandPath(path))
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	return store, nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the module version",
		Args:  exactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, version.Module(), version.Current())
		},
	}
}

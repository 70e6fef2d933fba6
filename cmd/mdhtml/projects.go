package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pkt.systems/mdhtml/internal/format"
	"pkt.systems/mdhtml/internal/registry"
	"pkt.systems/mdhtml/internal/sdd"
)

func newProjectsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage the registry of known projects",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRegistry(cmd, func(store *registry.Store) error {
				projects, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				selected, _, err := store.Selected(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(a.stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(projects)
				}
				printProjects(a.stdout, projects, selected.ID, terminalWidth(a.stdout, defaultWidth))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print projects as JSON")

	var label string
	add := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a project directory",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := expandPath(args[0])
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s: %w", path, sdd.ErrNotDirectory)
			}
			return a.withRegistry(cmd, func(store *registry.Store) error {
				p, err := store.Add(cmd.Context(), path, label)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "added %s (%s)\n", p.Label, p.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&label, "label", "", "Display label (default: directory name)")

	remove := &cobra.Command{
		Use:   "remove <id|path>",
		Short: "Forget a project",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRegistry(cmd, func(store *registry.Store) error {
				if err := store.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "removed %s\n", args[0])
				return nil
			})
		},
	}

	sel := &cobra.Command{
		Use:   "select <id|path>",
		Short: "Make a project the current one",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRegistry(cmd, func(store *registry.Store) error {
				p, err := store.Select(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "selected %s\n", p.Path)
				return nil
			})
		},
	}

	current := &cobra.Command{
		Use:   "current",
		Short: "Print the selected project path",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRegistry(cmd, func(store *registry.Store) error {
				p, ok, err := store.Selected(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no project selected")
				}
				fmt.Fprintln(a.stdout, p.Path)
				return nil
			})
		},
	}

	cmd.AddCommand(add, remove, sel, current)
	return cmd
}

func (a *app) withRegistry(cmd *cobra.Command, fn func(*registry.Store) error) error {
	cfg, err := a.loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	store, err := a.openRegistry(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func printProjects(w io.Writer, projects []registry.Project, selected string, width int) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects registered")
		return
	}
	labelWidth := 0
	for _, p := range projects {
		labelWidth = max(labelWidth, len([]rune(p.Label)))
	}
	labelWidth = min(labelWidth, 24)
	marker := color.New(color.FgGreen).Sprint("*")
	for _, p := range projects {
		mark := " "
		if p.ID == selected {
			mark = marker
		}
		pathWidth := max(width-labelWidth-20, 16)
		fmt.Fprintf(w, "%s %s  %s  %s\n",
			mark,
			format.PadRight(format.Truncate(p.Label, labelWidth), labelWidth),
			format.PadRight(format.Relative(p.LastOpened), 14),
			format.TruncateLeft(p.Path, pathWidth),
		)
	}
}

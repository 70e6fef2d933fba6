package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/ansi"
	"github.com/spf13/cobra"

	"pkt.systems/mdhtml/internal/config"
	"pkt.systems/mdhtml/internal/format"
	"pkt.systems/mdhtml/internal/sdd"
	"pkt.systems/mdhtml/internal/specview"
)

type specsFlags struct {
	filter specview.Filter
	sort   string
	desc   bool
	asJSON bool
}

func newSpecsCmd(a *app) *cobra.Command {
	var f specsFlags
	cmd := &cobra.Command{
		Use:   "specs [project]",
		Short: "List the specs of a project",
		Long: `List the specs under <project>/.agent-sdd/specs. Without a project
argument the selected registry project is used, then the current directory.`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			logger, err := a.logger()
			if err != nil {
				return err
			}
			project, err := a.resolveProject(cmd.Context(), cfg, args)
			if err != nil {
				return err
			}
			specs, err := sdd.NewScanner(logger).ScanSpecs(project)
			if err != nil {
				return fmt.Errorf("scan specs: %w", err)
			}
			state := specview.State{}.WithSpecs(specs).WithFilter(f.filter)
			if f.sort != "" {
				column, err := specview.ParseColumn(f.sort)
				if err != nil {
					return usageError{err: err}
				}
				state = state.SortBy(column)
				if f.desc {
					state = state.SortBy(column)
				}
			}
			view := state.View()
			if f.asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			printSpecsTable(a.stdout, specview.Rows(view), terminalWidth(a.stdout, defaultWidth))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.filter.Search, "search", "q", "", "Case-insensitive search over features, phases, statuses and tasks")
	flags.StringVar(&f.filter.Phase, "phase", "", "Only show specs in this phase")
	flags.StringVar(&f.filter.Status, "status", "", "Only show specs with this status")
	flags.StringVar(&f.sort, "sort", "", "Sort column: status|feature|phase|date|progress|size|modified")
	flags.BoolVar(&f.desc, "desc", false, "Sort descending")
	flags.BoolVar(&f.asJSON, "json", false, "Print specs as JSON")
	return cmd
}

// resolveProject picks the project directory from args, the registry
// selection or the working directory.
func (a *app) resolveProject(ctx context.Context, cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return expandPath(args[0]), nil
	}
	store, err := a.openRegistry(cfg)
	if err == nil {
		defer store.Close()
		if p, ok, err := store.Selected(ctx); err == nil && ok {
			return p.Path, nil
		}
	}
	return expandPath("."), nil
}

var specsHeader = []string{"STATUS", "FEATURE", "PHASE", "CREATED", "PROGRESS", "SIZE", "MODIFIED"}

const (
	featureColumn = 1
	minFeature    = 8
	columnGap     = "  "
)

func printSpecsTable(w io.Writer, rows []specview.Row, width int) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No specs found")
		return
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		status := color.New(format.StatusColor(r.Status)).Sprint(r.Status)
		cells = append(cells, []string{
			r.StatusIcon + " " + status,
			r.Feature,
			r.Phase,
			r.Created,
			fmt.Sprintf("%s %3d%%", r.Tasks, r.Progress),
			r.Size,
			r.Modified,
		})
	}

	widths := make([]int, len(specsHeader))
	for i, h := range specsHeader {
		widths[i] = ansi.PrintableRuneWidth(h)
	}
	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], ansi.PrintableRuneWidth(cell))
		}
	}
	fixed := len(columnGap) * (len(widths) - 1)
	for i, cw := range widths {
		if i != featureColumn {
			fixed += cw
		}
	}
	if avail := width - fixed; avail < widths[featureColumn] {
		widths[featureColumn] = max(avail, minFeature)
	}

	writeRow := func(row []string) {
		parts := make([]string, len(row))
		for i, cell := range row {
			if i == featureColumn {
				cell = format.Truncate(cell, widths[i])
			}
			if i == len(row)-1 {
				parts[i] = cell
				continue
			}
			parts[i] = format.PadRight(cell, widths[i])
		}
		fmt.Fprintln(w, strings.Join(parts, columnGap))
	}
	writeRow(specsHeader)
	for _, row := range cells {
		writeRow(row)
	}
}

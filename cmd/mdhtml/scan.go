package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pkt.systems/mdhtml/internal/format"
	"pkt.systems/mdhtml/internal/sdd"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		files  bool
	)
	cmd := &cobra.Command{
		Use:   "scan [project]",
		Short: "Summarize the .agent-sdd sections of a project",
		Args:  maxArgs(1),
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
			report, err := sdd.NewScanner(logger).ScanProject(project)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printProjectReport(a.stdout, project, report, files, terminalWidth(a.stdout, defaultWidth))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&files, "files", false, "List the files of each section")
	return cmd
}

func printProjectReport(w io.Writer, project string, report sdd.ProjectReport, files bool, width int) {
	fmt.Fprintln(w, format.TruncateLeft(project, width))
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if !report.HasAgentSDD {
		return
	}
	for _, name := range sdd.Sections {
		section := report.Sections[name]
		if !section.Exists {
			fmt.Fprintf(w, "  %s  missing\n", format.PadRight(name, 12))
			continue
		}
		fmt.Fprintf(w, "  %s  %3d files  %9s  updated %s\n",
			format.PadRight(name, 12),
			section.Summary.Total,
			format.Size(section.Summary.Bytes),
			format.Relative(section.Summary.Latest),
		)
		if !files {
			continue
		}
		for _, file := range section.Files {
			fmt.Fprintf(w, "      %s  %s\n", format.PadRight(format.Size(file.Size), 9), format.TruncateLeft(file.RelPath, width-17))
		}
	}
}

func newDirsCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "dirs [base]",
		Short: "List the non-hidden child directories of base",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := "."
			if len(args) == 1 {
				base = args[0]
			}
			dirs, err := sdd.ListChildDirectories(expandPath(base))
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(dirs)
			}
			for _, d := range dirs {
				if full {
					fmt.Fprintln(a.stdout, d.FullPath)
				} else {
					fmt.Fprintln(a.stdout, d.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print directories as JSON")
	cmd.Flags().BoolVar(&full, "full", false, "Print full paths")
	return cmd
}

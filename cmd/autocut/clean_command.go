package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"autocut/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var cleanAll bool
	var listOnly bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale run directories from the work directory",
		Long: `Remove run directories left behind by interrupted or --debug runs.

By default only directories older than autocut.stale_work_dir_hours are
removed. Use --all to remove every run directory, or --list to only show them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			workDir := cfg.Paths.WorkDir
			if listOnly {
				return listRunDirectories(cmd, ctx, workDir)
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			maxAge := time.Duration(cfg.Autocut.StaleWorkDirHours) * time.Hour
			if cleanAll {
				maxAge = 0
			}
			result := staging.CleanStale(workDir, maxAge, logger)

			if ctx.JSONMode() {
				errs := make([]string, 0, len(result.Failures))
				for _, failure := range result.Failures {
					errs = append(errs, failure.Error())
				}
				return writeJSON(cmd, map[string]any{
					"removed": len(result.Removed),
					"errors":  errs,
				})
			}
			out := cmd.OutOrStdout()
			switch {
			case len(result.Removed) == 0 && len(result.Failures) == 0:
				fmt.Fprintln(out, "No run directories to clean")
			case len(result.Failures) > 0:
				fmt.Fprintf(out, "Removed %d run directories, %d errors\n", len(result.Removed), len(result.Failures))
				for _, failure := range result.Failures {
					fmt.Fprintf(out, "  Error: %v\n", failure)
				}
			default:
				fmt.Fprintf(out, "Removed %d run directories\n", len(result.Removed))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove all run directories regardless of age")
	cmd.Flags().BoolVar(&listOnly, "list", false, "List run directories without removing anything")
	cmd.MarkFlagsMutuallyExclusive("all", "list")
	return cmd
}

func listRunDirectories(cmd *cobra.Command, ctx *commandContext, workDir string) error {
	dirs, err := staging.ListDirectories(workDir)
	if err != nil {
		return fmt.Errorf("list run directories: %w", err)
	}
	var total int64
	for _, dir := range dirs {
		total += dir.Size
	}
	if ctx.JSONMode() {
		if dirs == nil {
			dirs = []staging.DirInfo{}
		}
		return writeJSON(cmd, map[string]any{
			"work_dir":         workDir,
			"directories":      dirs,
			"total_size_bytes": total,
		})
	}
	out := cmd.OutOrStdout()
	if len(dirs) == 0 {
		fmt.Fprintln(out, "No run directories found")
		return nil
	}
	rows := make([][]string, 0, len(dirs))
	for _, dir := range dirs {
		rows = append(rows, []string{dir.Name, humanize.Time(dir.ModTime), humanize.IBytes(uint64(dir.Size))})
	}
	fmt.Fprintf(out, "Work directory: %s\n\n", workDir)
	fmt.Fprint(out, renderTable([]column{left("Directory"), right("Modified"), right("Size")}, rows))
	fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), humanize.IBytes(uint64(total)))
	return nil
}

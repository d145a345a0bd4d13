package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"autocut/internal/autocut"
	"autocut/internal/samples"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var transitionPattern string

	cmd := &cobra.Command{
		Use:   "scan <audio>...",
		Short: "Report where the transition pattern occurs without writing audio",
		Args:  requireArgs("audio file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			steps, err := resolveSteps(cfg, transitionPattern)
			if err != nil {
				return err
			}
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			runner, closeRunner, err := ctx.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRunner()

			progress := newScanProgress(cmd.ErrOrStderr(), !ctx.JSONMode() && isTerminal(cmd.ErrOrStderr()), "scan", runner.Logger)
			events, tl, err := runner.Detect(cmd.Context(), inputs, steps, progress.update)
			progress.finish()
			if err != nil {
				return err
			}

			transitions := make([]int64, len(events))
			for i, event := range events {
				transitions[i] = tl.IndexToPCMSample(event.Index)
			}
			rows := eventsJSON(tl, events, transitions)
			if ctx.JSONMode() {
				return writeJSON(cmd, rows)
			}
			table := make([][]string, 0, len(rows))
			for i, row := range rows {
				table = append(table, []string{
					strconv.Itoa(i + 1),
					row.Sample,
					row.Edge,
					strconv.Itoa(row.Window),
					row.Timestamp,
					strconv.FormatInt(row.Frame, 10),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]column{right("#"), left("Sample"), left("Edge"), right("Window"), right("Time"), right("Frame")},
				table,
			))
			return nil
		},
	}
	cmd.Flags().StringVarP(&transitionPattern, "transition-pattern", "t", "", "Named transition pattern from the config")
	return cmd
}

func newErrorsCommand(ctx *commandContext) *cobra.Command {
	var showAll bool

	cmd := &cobra.Command{
		Use:   "errors <audio>...",
		Short: "Print the best sample match error for every window",
		Long: `Print, for every scan window, the sample with the lowest bit error rate.
Windows no sample aligns with are hidden unless --all is given. Useful for
tuning scan.error_threshold.`,
		Args: requireArgs("audio file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := expandInputs(args)
			if err != nil {
				return err
			}
			runner, closeRunner, err := ctx.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRunner()

			profile, tl, err := runner.ErrorProfile(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			type windowJSON struct {
				Window    int     `json:"window"`
				Timestamp string  `json:"timestamp"`
				Sample    string  `json:"sample,omitempty"`
				Error     float64 `json:"error"`
			}
			var rows []windowJSON
			for _, w := range profile {
				if !showAll && w.Error >= samples.MissError {
					continue
				}
				rows = append(rows, windowJSON{
					Window:    w.Window,
					Timestamp: autocut.FormatSeconds(tl.IndexToSeconds(w.Index)),
					Sample:    w.Sample,
					Error:     w.Error,
				})
			}
			if ctx.JSONMode() {
				if rows == nil {
					rows = []windowJSON{}
				}
				return writeJSON(cmd, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No window aligned with any sample")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{
					strconv.Itoa(row.Window),
					row.Timestamp,
					row.Sample,
					strconv.FormatFloat(row.Error, 'f', 3, 64),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]column{right("Window"), right("Time"), left("Sample"), right("Error")},
				table,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "Include windows without any alignment")
	return cmd
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autocut/internal/deps"
	"autocut/internal/preflight"
)

type statusCheckJSON struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools, directories, samples, and the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tools := preflight.CheckSystemDeps(cfg)
			checks := preflight.RunAll(cmd.Context(), cfg)
			failed := len(deps.Missing(tools)) + len(preflight.Failed(checks))

			if ctx.JSONMode() {
				out := make([]statusCheckJSON, 0, len(tools)+len(checks))
				for _, tool := range tools {
					detail := tool.Path
					if !tool.Available {
						detail = tool.Detail
					}
					out = append(out, statusCheckJSON{Name: tool.Name, Passed: tool.Available, Detail: detail})
				}
				for _, check := range checks {
					out = append(out, statusCheckJSON{Name: check.Name, Passed: check.Passed, Detail: check.Detail})
				}
				if err := writeJSON(cmd, map[string]any{"config_path": ctx.configPath, "checks": out}); err != nil {
					return err
				}
			} else {
				colorize := isTerminal(cmd.OutOrStdout())
				lines := renderSectionHeader("Tools", colorize)
				for _, tool := range tools {
					kind, message := statusOK, tool.Path
					if !tool.Available {
						kind, message = statusError, tool.Detail
						if tool.Optional {
							kind = statusWarn
						}
					}
					lines = append(lines, renderStatusLine(tool.Name, kind, message, colorize))
				}
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Environment", colorize)...)
				lines = append(lines, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
				for _, check := range checks {
					kind := statusOK
					if !check.Passed {
						kind = statusError
					}
					lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			}

			if failed > 0 {
				return fmt.Errorf("%d status checks failed", failed)
			}
			return nil
		},
	}
}

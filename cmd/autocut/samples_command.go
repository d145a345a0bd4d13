package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"autocut/internal/fingerprint"
	"autocut/internal/media/ffmpeg"
)

func newSamplesCommand(ctx *commandContext) *cobra.Command {
	samplesCmd := &cobra.Command{
		Use:   "samples",
		Short: "Manage reference sample fingerprints",
	}
	samplesCmd.AddCommand(newSamplesListCommand(ctx))
	samplesCmd.AddCommand(newSamplesBuildCommand(ctx))
	return samplesCmd
}

type sampleFileJSON struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Present   bool   `json:"present"`
	SizeBytes int64  `json:"size_bytes"`
}

func newSamplesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured reference samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			entries := make([]sampleFileJSON, 0, len(cfg.Samples.Files))
			for _, name := range cfg.SampleNames() {
				entry := sampleFileJSON{Name: name, Path: cfg.Samples.Files[name]}
				if info, err := os.Stat(entry.Path); err == nil && !info.IsDir() {
					entry.Present = true
					entry.SizeBytes = info.Size()
				}
				entries = append(entries, entry)
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No samples configured")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				size := "missing"
				if entry.Present {
					size = humanize.IBytes(uint64(entry.SizeBytes))
				}
				rows = append(rows, []string{entry.Name, size, entry.Path})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]column{left("Sample"), right("Size"), left("Path")},
				rows,
			))
			return nil
		},
	}
}

func newSamplesBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Fingerprint the reference samples and refresh the cached bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store := ctx.openStore(cmd.Context(), cfg, logger)
			defer store.Close()

			loader := ctx.newSampleLoader(cfg, store,
				fingerprint.NewFpcalc(cfg.Tools.Fpcalc, cfg.Tools.FFprobe, logger),
				ffmpeg.New(cfg.Tools.FFmpeg, logger),
				logger)
			lib, err := loader.Rebuild(cmd.Context())
			if err != nil {
				return err
			}

			type builtJSON struct {
				Name  string `json:"name"`
				Codes int    `json:"codes"`
			}
			built := make([]builtJSON, 0, lib.Len())
			for _, name := range lib.Names() {
				sample, _ := lib.Get(name)
				built = append(built, builtJSON{Name: name, Codes: sample.Len()})
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, built)
			}
			rows := make([][]string, 0, len(built))
			for _, b := range built {
				rows = append(rows, []string{b.Name, strconv.Itoa(b.Codes)})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]column{left("Sample"), right("Codes")}, rows))
			return nil
		},
	}
}

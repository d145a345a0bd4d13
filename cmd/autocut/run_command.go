package main

import (
	"errors"

	"github.com/spf13/cobra"

	"autocut/internal/autocut"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags cutFlags

	cmd := &cobra.Command{
		Use:   "run <audio>...",
		Short: "Cut transitions out of an ordered sequence of audio files",
		Long: `Fingerprint the inputs as one continuous stream, find the configured
transition pattern, and write the intervals the cut pattern keeps.

Without --merge every kept interval becomes its own part, so the output name
needs one '*' for the part number (for example "episode_*.wav"). When the cut
pattern keeps a single interval the '*' may be left out; the part number is
then appended before the extension.`,
		Args: requireArgs("audio file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			plan, err := flags.resolve(cmd, cfg)
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
			result, err := runner.Autocut(cmd.Context(), autocut.Request{
				Inputs:       inputs,
				Output:       outputName(flags.output, inputs[0], cfg, plan.merge),
				Steps:        plan.steps,
				Segments:     plan.segments,
				Merge:        plan.merge,
				IgnoreErrors: plan.ignoreErrors,
				Progress:     progress.update,
			})
			progress.finish()
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, newResultJSON(result))
			}
			printResult(cmd, result)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newVODCommand(ctx *commandContext) *cobra.Command {
	var flags cutFlags
	var join bool
	var noAutocut bool

	cmd := &cobra.Command{
		Use:   "vod <video>...",
		Short: "Extract episode audio from videos and cut it",
		Long: `Extract the audio track of each video as WAV segments, then autocut it.

Each video is its own episode unless --join is given, in which case all
videos form one episode in argument order. --no-autocut only extracts and
merges the audio.`,
		Args: requireArgs("video file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			videos, err := expandInputs(args)
			if err != nil {
				return err
			}
			groups := autocut.EpisodeGroups(videos, join)
			if len(groups) > 1 && flags.output != "" {
				return errors.New("--output names a single episode; add --join or omit --output")
			}

			plan := cutPlan{merge: true}
			if !noAutocut {
				if plan, err = flags.resolve(cmd, cfg); err != nil {
					return err
				}
			}

			runner, closeRunner, err := ctx.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRunner()

			var results []autocut.Result
			for _, group := range groups {
				progress := newScanProgress(cmd.ErrOrStderr(), !ctx.JSONMode() && isTerminal(cmd.ErrOrStderr()), "scan", runner.Logger)
				result, err := runner.ProcessEpisode(cmd.Context(), autocut.EpisodeRequest{
					Request: autocut.Request{
						Output:       outputName(flags.output, group[0], cfg, plan.merge),
						Steps:        plan.steps,
						Segments:     plan.segments,
						Merge:        plan.merge,
						IgnoreErrors: plan.ignoreErrors,
						Progress:     progress.update,
					},
					Videos:    group,
					NoAutocut: noAutocut,
				})
				progress.finish()
				if err != nil {
					return err
				}
				results = append(results, result)
				if !ctx.JSONMode() {
					printResult(cmd, result)
				}
			}
			if ctx.JSONMode() {
				out := make([]resultJSON, 0, len(results))
				for _, result := range results {
					out = append(out, newResultJSON(result))
				}
				return writeJSON(cmd, out)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&join, "join", false, "Treat all videos as one episode")
	cmd.Flags().BoolVar(&noAutocut, "no-autocut", false, "Only extract and merge the audio")
	return cmd
}

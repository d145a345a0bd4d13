package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autocut/internal/config"
	"autocut/internal/planner"
)

const (
	keepIntroPattern = "keep_intro"
	cutIntroPattern  = "cut_intro"
)

// cutFlags are the pattern and output flags shared by run and vod.
type cutFlags struct {
	transitionPattern string
	cutPattern        string
	keepIntro         bool
	cutIntro          bool
	merge             bool
	ignoreErrors      bool
	output            string
}

func (f *cutFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.output, "output", "o", "", "Output file; split mode needs one '*' for the part number")
	flags.StringVarP(&f.transitionPattern, "transition-pattern", "t", "", "Named transition pattern from the config")
	flags.StringVar(&f.cutPattern, "cut-pattern", "", "Named cut pattern from the config")
	flags.BoolVar(&f.keepIntro, "keep-intro", false, "Use the keep_intro cut pattern")
	flags.BoolVar(&f.cutIntro, "cut-intro", false, "Use the cut_intro cut pattern")
	flags.BoolVar(&f.merge, "merge", false, "Write all kept intervals into one file")
	flags.BoolVar(&f.ignoreErrors, "ignore-errors", false, "Write unedited audio when the transitions are not found")
	cmd.MarkFlagsMutuallyExclusive("keep-intro", "cut-intro", "cut-pattern")
}

// cutPlan is the resolved form of cutFlags.
type cutPlan struct {
	steps        []planner.Step
	segments     []planner.Segment
	merge        bool
	ignoreErrors bool
}

func (f *cutFlags) resolve(cmd *cobra.Command, cfg *config.Config) (cutPlan, error) {
	cutName := f.cutPattern
	switch {
	case f.keepIntro:
		cutName = keepIntroPattern
	case f.cutIntro:
		cutName = cutIntroPattern
	}

	steps, err := resolveSteps(cfg, f.transitionPattern)
	if err != nil {
		return cutPlan{}, err
	}
	rawCut, err := cfg.CutPattern(cutName)
	if err != nil {
		return cutPlan{}, err
	}
	segments, err := planner.ParseSegments(rawCut)
	if err != nil {
		return cutPlan{}, err
	}
	if err := planner.CheckPatterns(steps, segments); err != nil {
		return cutPlan{}, err
	}

	plan := cutPlan{
		steps:        steps,
		segments:     segments,
		merge:        cfg.Autocut.Merge,
		ignoreErrors: cfg.Autocut.IgnoreErrors,
	}
	if cmd.Flags().Changed("merge") {
		plan.merge = f.merge
	}
	if cmd.Flags().Changed("ignore-errors") {
		plan.ignoreErrors = f.ignoreErrors
	}
	return plan, nil
}

func resolveSteps(cfg *config.Config, name string) ([]planner.Step, error) {
	raw, err := cfg.TransitionPattern(name)
	if err != nil {
		return nil, err
	}
	steps, err := planner.ParseSteps(raw)
	if err != nil {
		return nil, fmt.Errorf("transition pattern: %w", err)
	}
	return steps, nil
}

// outputName returns the requested output, or a name derived from input.
func outputName(requested, input string, cfg *config.Config, merge bool) string {
	if requested != "" {
		expanded, err := config.ExpandPath(requested)
		if err == nil {
			return expanded
		}
		return requested
	}
	return planner.SuggestOutputName(input, cfg.Autocut.OutputExtension, !merge)
}

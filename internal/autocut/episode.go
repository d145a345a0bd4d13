package autocut

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"autocut/internal/logging"
	"autocut/internal/planner"
	"autocut/internal/staging"
)

// EpisodeRequest describes turning one or more videos into episode audio.
type EpisodeRequest struct {
	Request
	// Videos are the source files, in playback order. Request.Inputs is ignored.
	Videos []string
	// NoAutocut converts and merges the audio without cutting.
	NoAutocut bool
}

// ProcessEpisode extracts the audio of every video as WAV segments and
// autocuts the combined sequence, or merges it unedited with NoAutocut.
func (r *Runner) ProcessEpisode(ctx context.Context, req EpisodeRequest) (Result, error) {
	if len(req.Videos) == 0 {
		return Result{}, errors.New("no video files")
	}
	if req.NoAutocut {
		if err := planner.ValidateOutputName(req.Output, false); err != nil {
			return Result{}, err
		}
	} else {
		req.Inputs = req.Videos
		if err := validateRequest(req.Request); err != nil {
			return Result{}, err
		}
	}

	ctx, logger := r.runContext(ctx, "episode")
	runDir, release, err := staging.Acquire(r.WorkDir, r.KeepWorkDir, logger)
	if err != nil {
		return Result{}, err
	}
	defer release()

	var segments []string
	for i, video := range req.Videos {
		outDir := filepath.Join(runDir, fmt.Sprintf("video-%02d", i))
		logger.Info("extracting audio", logging.String("input", filepath.Base(video)))
		parts, err := r.Media.SegmentAudio(logging.WithInput(ctx, video), video, outDir, r.SegmentSeconds)
		if err != nil {
			return Result{}, err
		}
		segments = append(segments, parts...)
	}
	logger.Info("audio extracted", logging.Int("segments", len(segments)), logging.Int("videos", len(req.Videos)))

	if req.NoAutocut {
		outputs, err := r.mergeUnedited(ctx, segments, req.Output, true)
		if err != nil {
			return Result{}, err
		}
		return Result{Outputs: outputs}, nil
	}

	req.Inputs = segments
	return r.autocutIn(ctx, logger, runDir, req.Request)
}

// EpisodeGroups splits videos into episodes: all of them as one episode
// when join is set, otherwise one episode per video.
func EpisodeGroups(videos []string, join bool) [][]string {
	if join {
		return [][]string{videos}
	}
	groups := make([][]string, 0, len(videos))
	for _, video := range videos {
		groups = append(groups, []string{video})
	}
	return groups
}

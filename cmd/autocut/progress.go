package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"autocut/internal/logging"
)

// scanProgress renders scan progress as a bar on a terminal and as sampled
// log lines everywhere else.
type scanProgress struct {
	out         io.Writer
	interactive bool
	description string
	logger      *slog.Logger
	sampler     *logging.ProgressSampler
	bar         *progressbar.ProgressBar
}

func newScanProgress(out io.Writer, interactive bool, description string, logger *slog.Logger) *scanProgress {
	return &scanProgress{
		out:         out,
		interactive: interactive,
		description: description,
		logger:      logger,
		sampler:     logging.NewProgressSampler(10),
	}
}

func (p *scanProgress) update(done, total int) {
	if p.interactive {
		if p.bar == nil {
			p.bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(p.out),
				progressbar.OptionSetDescription(p.description),
				progressbar.OptionShowCount(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = p.bar.Set(done)
		return
	}
	percent := logging.Percent(done, total)
	if p.logger != nil && p.sampler.ShouldLog(percent, p.description) {
		p.logger.Info("scan progress",
			logging.String(logging.FieldStage, p.description),
			logging.Int("windows_done", done),
			logging.Int("windows", total),
			logging.Float64("percent", percent))
	}
}

func (p *scanProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

package config

const (
	defaultConfigPath        = "~/.config/autocut/config.toml"
	defaultWorkDir           = "~/.local/share/autocut/work"
	defaultCacheDir          = "~/.cache/autocut"
	defaultLogDir            = "~/.local/share/autocut/logs"
	defaultSamplesDir        = "~/.config/autocut/samples"
	defaultErrorThreshold    = 0.22
	defaultMinRunWindows     = 2
	defaultWindowSeconds     = 10
	defaultMask              = 0xFF000000
	defaultBundleKey         = "samples/bundle"
	defaultSegmentSeconds    = 1800
	defaultBufferFrames      = 4096
	defaultWorkers           = 4
	defaultStaleWorkDirHours = 24
	defaultOutputExtension   = ".wav"
	defaultCacheBackend      = "sqlite"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:  defaultWorkDir,
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			Fpcalc:  "fpcalc",
		},
		Scan: Scan{
			ErrorThreshold: defaultErrorThreshold,
			MinRunWindows:  defaultMinRunWindows,
			WindowSeconds:  defaultWindowSeconds,
			CheckHighBits:  true,
			Mask:           defaultMask,
		},
		Samples: Samples{
			BundleKey: defaultBundleKey,
			Files: map[string]string{
				"overture": defaultSamplesDir + "/overture.wav",
				"intro":    defaultSamplesDir + "/intro.wav",
			},
		},
		// The episode pattern brackets both overtures and the intro so the
		// cut patterns can drop the music itself. Intervals, in order:
		// pre-show, overture, announcements, intro, first half, break
		// overture, second half.
		TransitionPatterns: map[string][]string{
			"episode": {"overture", "overture:end", "intro", "intro:end", "overture", "overture:end"},
		},
		CutPatterns: map[string][]string{
			"cut_intro":  {"cut", "cut", "cut", "cut", "keep", "cut", "keep"},
			"keep_intro": {"cut", "cut", "keep", "keep", "keep", "cut", "keep"},
		},
		Autocut: Autocut{
			TransitionPattern: "episode",
			CutPattern:        "cut_intro",
			OutputExtension:   defaultOutputExtension,
			SegmentSeconds:    defaultSegmentSeconds,
			BufferFrames:      defaultBufferFrames,
			Workers:           defaultWorkers,
			StaleWorkDirHours: defaultStaleWorkDirHours,
		},
		Cache: Cache{
			Enabled: true,
			Backend: defaultCacheBackend,
			S3:      S3Cache{Prefix: "autocut/"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

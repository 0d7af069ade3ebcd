package config

const (
	defaultLogDir                = "~/.local/share/shuttle/logs"
	defaultMoviesDir             = "Movies"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultQueuePollIntervalMS   = 500
	defaultRetryDelayMS          = 1000
	defaultMaxDestinationRetries = 0 // unlimited
	defaultNtfyRequestTimeout    = 10
)

var defaultVideoExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".ts", ".mpeg",
}

var defaultArchiveExtensions = []string{".zip"}

// Default returns the baseline configuration applied before the TOML file is
// decoded over it.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Media: Media{
			VideoExtensions:   append([]string{}, defaultVideoExtensions...),
			ArchiveExtensions: append([]string{}, defaultArchiveExtensions...),
		},
		Library: Library{
			MoviesDir: defaultMoviesDir,
		},
		Workflow: Workflow{
			QueuePollIntervalMS:   defaultQueuePollIntervalMS,
			RetryDelayMS:          defaultRetryDelayMS,
			MaxDestinationRetries: defaultMaxDestinationRetries,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

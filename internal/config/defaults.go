package config

const (
	defaultServerBaseURL      = "http://127.0.0.1:5000"
	defaultUserAgent          = "fileconv/0.1.0"
	defaultStateDir           = "~/.local/share/fileconv"
	defaultDownloadDir        = "~/Downloads"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultProgressIntervalMS = 200
	defaultProgressStep       = 5
	defaultProgressCap        = 90
	defaultSuccessDelayMS     = 1000
	defaultFailureDelayMS     = 2000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			BaseURL:   defaultServerBaseURL,
			UserAgent: defaultUserAgent,
		},
		Conversion: Conversion{
			ProgressIntervalMS: defaultProgressIntervalMS,
			ProgressStep:       defaultProgressStep,
			ProgressCap:        defaultProgressCap,
			SuccessDelayMS:     defaultSuccessDelayMS,
			FailureDelayMS:     defaultFailureDelayMS,
		},
		Paths: Paths{
			StateDir:    defaultStateDir,
			DownloadDir: defaultDownloadDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

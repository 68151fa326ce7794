package config

const (
	defaultWormsBaseURL     = "https://www.marinespecies.org/rest"
	defaultTimeoutSeconds   = 15
	defaultRetryMaxAttempts = 3
	defaultWorkers          = 4
	defaultCacheDir         = "~/.cache/obisqc"
	defaultCacheTTLDays     = 30
	defaultLogLevel         = "info"
	defaultLogFormat        = "text"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Worms: Worms{
			BaseURL:          defaultWormsBaseURL,
			TimeoutSeconds:   defaultTimeoutSeconds,
			RetryMaxAttempts: defaultRetryMaxAttempts,
		},
		Check: Check{
			Workers: defaultWorkers,
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir,
			TTLDays: defaultCacheTTLDays,
		},
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

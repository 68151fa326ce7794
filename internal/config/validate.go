package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for values the rest of the system cannot
// work with.
func (c *Config) Validate() error {
	var problems []error

	baseURL := strings.TrimSpace(c.Worms.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			problems = append(problems, fmt.Errorf("worms.base_url: %q is not an absolute url", c.Worms.BaseURL))
		}
	}
	if c.Worms.TimeoutSeconds <= 0 {
		problems = append(problems, fmt.Errorf("worms.timeout_seconds: must be positive, got %d", c.Worms.TimeoutSeconds))
	}
	if c.Worms.RetryMaxAttempts <= 0 {
		problems = append(problems, fmt.Errorf("worms.retry_max_attempts: must be positive, got %d", c.Worms.RetryMaxAttempts))
	}
	if c.Check.Workers <= 0 {
		problems = append(problems, fmt.Errorf("check.workers: must be positive, got %d", c.Check.Workers))
	}
	if c.Cache.TTLDays < 0 {
		problems = append(problems, fmt.Errorf("cache.ttl_days: must not be negative, got %d", c.Cache.TTLDays))
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Dir) == "" {
		problems = append(problems, errors.New("cache.dir: required when cache.enabled is true"))
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Errorf("log_format: unsupported value %q", c.LogFormat))
	}

	return errors.Join(problems...)
}

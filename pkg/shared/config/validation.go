package config

import (
	"fmt"
	"time"
)

// ValidateConfig checks if the global configuration has valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := validateHTTPConfig(&cfg.HttpClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	return nil
}

// validateHTTPConfig checks if the HTTP configuration has valid values.
func validateHTTPConfig(httpConfig *HttpClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"retry_wait_time":     httpConfig.RetryWaitTime,
		"retry_max_wait_time": httpConfig.RetryMaxWaitTime,
		"timeout":             httpConfig.Timeout,
	}
	for name, duration := range durations {
		if duration < 0 {
			return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, duration)
		}
	}

	return nil
}

package config

import (
	"time"
)

// RetryConfig holds the executor retry policy.
type RetryConfig struct {
	// MaxRetries is the number of additional attempts after the first one
	MaxRetries int
	// Delay is the fixed pause between attempts
	Delay time.Duration
}

// GetRetryConfig returns the executor retry configuration
func (c Config) GetRetryConfig() RetryConfig {
	if c.IsTest() {
		return RetryConfig{MaxRetries: c.ExecutorMaxRetries, Delay: 10 * time.Millisecond}
	}
	maxRetries := c.ExecutorMaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return RetryConfig{MaxRetries: maxRetries, Delay: c.ExecutorRetryDelay}
}

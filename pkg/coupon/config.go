package coupon

import "time"

// Config represents the configuration for the coupon validation client
type Config struct {
	// BaseURL is the validation service base URL; requests go to BaseURL/validate
	BaseURL string

	// Timeout bounds a single validation call
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	return nil
}

package config

// RateLimitConfig bounds the rate of audit requests accepted by the server
type RateLimitConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"gt=0"`
	Burst             int     `json:"burst,omitempty" yaml:"burst,omitempty" validate:"min=1"`
}

// NewDefaultRateLimitConfig creates default rate limit configuration
func NewDefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           false,
		RequestsPerSecond: DefaultRateLimitRequestsPerSecond,
		Burst:             DefaultRateLimitBurst,
	}
}

package rslimiter

// ResourceLimiterConfig holds configuration for the audit admission limiter
type ResourceLimiterConfig struct {
	MaxConcurrent      int     // Maximum audits running at once, 0 means unlimited
	SystemMemThreshold float64 // Fraction of system memory above which new audits are refused, 0 disables
}

// DefaultResourceLimiterConfig returns default configuration
func DefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		MaxConcurrent:      4,
		SystemMemThreshold: 0.9,
	}
}

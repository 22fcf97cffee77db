// Package rslimiter admits audits: it caps how many run at once and refuses new ones while the
// host is short on memory, since every audit starts its own browser.
package rslimiter

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrSystemMemoryExceeded is returned when system memory usage is above the threshold
var ErrSystemMemoryExceeded = errors.New("system memory threshold exceeded")

// ResourceLimiter gates audit admission
type ResourceLimiter struct {
	config      ResourceLimiterConfig
	logger      zerolog.Logger
	slots       chan struct{}
	memoryUsage func() (float64, error)
}

// NewResourceLimiter creates a new resource limiter
func NewResourceLimiter(config ResourceLimiterConfig, logger zerolog.Logger) *ResourceLimiter {
	rl := &ResourceLimiter{
		config:      config,
		logger:      logger.With().Str("component", "ResourceLimiter").Logger(),
		memoryUsage: systemMemoryFraction,
	}
	if config.MaxConcurrent > 0 {
		rl.slots = make(chan struct{}, config.MaxConcurrent)
	}
	return rl
}

// Acquire waits for a free slot. It fails fast when system memory is above the threshold and
// returns ctx.Err() if ctx ends while waiting. The returned release must be called once.
func (rl *ResourceLimiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := rl.CheckSystemMemory(); err != nil {
		return nil, err
	}

	if rl.slots == nil {
		return func() {}, nil
	}

	select {
	case rl.slots <- struct{}{}:
		return func() { <-rl.slots }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CheckSystemMemory returns ErrSystemMemoryExceeded when the host is above the threshold. A
// failure to read memory statistics is logged and does not block admission.
func (rl *ResourceLimiter) CheckSystemMemory() error {
	if rl.config.SystemMemThreshold <= 0 {
		return nil
	}

	used, err := rl.memoryUsage()
	if err != nil {
		rl.logger.Warn().Err(err).Msg("Failed to read system memory usage")
		return nil
	}

	if used > rl.config.SystemMemThreshold {
		rl.logger.Warn().
			Float64("system_mem_used", used).
			Float64("threshold", rl.config.SystemMemThreshold).
			Msg("Refusing audit, system memory threshold exceeded")
		return fmt.Errorf("%w: %.0f%% used", ErrSystemMemoryExceeded, used*100)
	}
	return nil
}

// InFlight returns the number of held slots
func (rl *ResourceLimiter) InFlight() int {
	if rl.slots == nil {
		return 0
	}
	return len(rl.slots)
}

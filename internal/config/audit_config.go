package config

import (
	"time"

	"github.com/aleister1102/pagecheck/internal/browser"
)

// AuditConfig controls how a single page is audited
type AuditConfig struct {
	DefaultTimeoutMs      int      `json:"default_timeout_ms,omitempty" yaml:"default_timeout_ms,omitempty" validate:"min=1,max=300000"`
	SettleWindowMs        int      `json:"settle_window_ms" yaml:"settle_window_ms" validate:"min=0"`
	LoadStrategies        []string `json:"load_strategies,omitempty" yaml:"load_strategies,omitempty" validate:"min=1,dive,loadstrategy"`
	EnforcePolicy         bool     `json:"enforce_policy" yaml:"enforce_policy"`
	AllowPolicyOptOut     bool     `json:"allow_policy_opt_out" yaml:"allow_policy_opt_out"`
	MaxStorageFieldLength int      `json:"max_storage_field_length,omitempty" yaml:"max_storage_field_length,omitempty" validate:"min=1"`
	MaxContentLength      int      `json:"max_content_length,omitempty" yaml:"max_content_length,omitempty" validate:"min=1"`
	MaxConcurrentAudits   int      `json:"max_concurrent_audits,omitempty" yaml:"max_concurrent_audits,omitempty" validate:"min=0"`
	SystemMemThreshold    float64  `json:"system_mem_threshold" yaml:"system_mem_threshold" validate:"min=0,max=1"`
}

// NewDefaultAuditConfig creates default audit configuration
func NewDefaultAuditConfig() AuditConfig {
	return AuditConfig{
		DefaultTimeoutMs:      DefaultAuditTimeoutMs,
		SettleWindowMs:        DefaultSettleWindowMs,
		LoadStrategies:        append([]string{}, DefaultLoadStrategies...),
		EnforcePolicy:         DefaultEnforcePolicy,
		AllowPolicyOptOut:     false,
		MaxStorageFieldLength: DefaultMaxStorageFieldLength,
		MaxContentLength:      DefaultMaxContentLength,
		MaxConcurrentAudits:   DefaultMaxConcurrentAudits,
		SystemMemThreshold:    DefaultSystemMemThreshold,
	}
}

// DefaultTimeout returns the navigation timeout used when a request does not set one
func (c AuditConfig) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMs) * time.Millisecond
}

// SettleWindow returns how long a loaded page is observed before telemetry is read
func (c AuditConfig) SettleWindow() time.Duration {
	return time.Duration(c.SettleWindowMs) * time.Millisecond
}

// Strategies returns the configured strategies, skipping unknown names
func (c AuditConfig) Strategies() []browser.LoadStrategy {
	strategies := make([]browser.LoadStrategy, 0, len(c.LoadStrategies))
	for _, name := range c.LoadStrategies {
		if s, ok := browser.ParseLoadStrategy(name); ok {
			strategies = append(strategies, s)
		}
	}
	return strategies
}

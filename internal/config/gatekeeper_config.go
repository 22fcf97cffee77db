package config

import "time"

// GatekeeperConfig tunes the per-request SSRF policy
type GatekeeperConfig struct {
	AllowedPorts     []string `json:"allowed_ports,omitempty" yaml:"allowed_ports,omitempty" validate:"min=1,dive,numeric"`
	ResolveHostnames bool     `json:"resolve_hostnames" yaml:"resolve_hostnames"`
	ResolveTimeoutMs int      `json:"resolve_timeout_ms,omitempty" yaml:"resolve_timeout_ms,omitempty" validate:"min=1"`
}

// NewDefaultGatekeeperConfig creates default gatekeeper configuration
func NewDefaultGatekeeperConfig() GatekeeperConfig {
	return GatekeeperConfig{
		AllowedPorts:     append([]string{}, DefaultAllowedPorts...),
		ResolveHostnames: false,
		ResolveTimeoutMs: DefaultGatekeeperResolveTimeoutMs,
	}
}

// ResolveTimeout returns the DNS lookup bound
func (c GatekeeperConfig) ResolveTimeout() time.Duration {
	return time.Duration(c.ResolveTimeoutMs) * time.Millisecond
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GlobalConfig)
		wantErr string
	}{
		{"defaults", func(*GlobalConfig) {}, ""},
		{"bad log level", func(c *GlobalConfig) { c.LogConfig.LogLevel = "verbose" }, "loglevel"},
		{"bad log format", func(c *GlobalConfig) { c.LogConfig.LogFormat = "xml" }, "logformat"},
		{"unknown strategy", func(c *GlobalConfig) { c.AuditConfig.LoadStrategies = []string{"networkidle", "commit"} }, "loadstrategy"},
		{"no strategies", func(c *GlobalConfig) { c.AuditConfig.LoadStrategies = nil }, "LoadStrategies"},
		{"port out of range", func(c *GlobalConfig) { c.ServerConfig.Port = 70000 }, "Port"},
		{"non numeric allowed port", func(c *GlobalConfig) { c.GatekeeperConfig.AllowedPorts = []string{"https"} }, "numeric"},
		{"negative settle window", func(c *GlobalConfig) { c.AuditConfig.SettleWindowMs = -1 }, "SettleWindowMs"},
		{"unknown environment", func(c *GlobalConfig) { c.Environment = "staging" }, "oneof"},
		{"tiny viewport", func(c *GlobalConfig) { c.BrowserConfig.ViewportWidth = 10 }, "ViewportWidth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

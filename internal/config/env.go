package config

import (
	"strings"

	"github.com/aleister1102/pagecheck/internal/common/errorwrapper"
	"github.com/kelseyhightower/envconfig"
)

// EnvOverrides are the settings that may come from the environment. Empty values leave the
// file configuration untouched.
type EnvOverrides struct {
	Port       int    `envconfig:"PORT"`
	Env        string `envconfig:"PAGECHECK_ENV"`
	LogLevel   string `envconfig:"PAGECHECK_LOG_LEVEL"`
	ChromePath string `envconfig:"PAGECHECK_CHROME_PATH"`
}

// LoadEnvOverrides reads EnvOverrides from the process environment
func LoadEnvOverrides() (EnvOverrides, error) {
	var o EnvOverrides
	if err := envconfig.Process("", &o); err != nil {
		return EnvOverrides{}, errorwrapper.WrapError(err, "failed to load environment overrides")
	}
	return o, nil
}

// ApplyEnvOverrides merges o into cfg. PAGECHECK_ENV=dev turns policy enforcement off.
func (cfg *GlobalConfig) ApplyEnvOverrides(o EnvOverrides) {
	if o.Port != 0 {
		cfg.ServerConfig.Port = o.Port
	}
	if o.LogLevel != "" {
		cfg.LogConfig.LogLevel = o.LogLevel
	}
	if o.ChromePath != "" {
		cfg.BrowserConfig.ChromePath = o.ChromePath
	}
	if env := strings.ToLower(strings.TrimSpace(o.Env)); env != "" {
		cfg.Environment = env
	}
	if cfg.Environment == EnvDev {
		cfg.AuditConfig.EnforcePolicy = false
	}
}

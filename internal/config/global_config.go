package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/pagecheck/internal/common/errorwrapper"
	"github.com/aleister1102/pagecheck/internal/logger"
	"gopkg.in/yaml.v3"
)

// maxConfigFileSize caps config files at 10MB
const maxConfigFileSize = 10 * 1024 * 1024

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	ServerConfig     ServerConfig         `json:"server_config,omitempty" yaml:"server_config,omitempty"`
	AuditConfig      AuditConfig          `json:"audit_config,omitempty" yaml:"audit_config,omitempty"`
	BrowserConfig    BrowserConfig        `json:"browser_config,omitempty" yaml:"browser_config,omitempty"`
	GatekeeperConfig GatekeeperConfig     `json:"gatekeeper_config,omitempty" yaml:"gatekeeper_config,omitempty"`
	RateLimitConfig  RateLimitConfig      `json:"rate_limit_config,omitempty" yaml:"rate_limit_config,omitempty"`
	LogConfig        logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	// Environment is "prod" or "dev"; dev disables policy enforcement
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty" validate:"omitempty,oneof=prod dev"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ServerConfig:     NewDefaultServerConfig(),
		AuditConfig:      NewDefaultAuditConfig(),
		BrowserConfig:    NewDefaultBrowserConfig(),
		GatekeeperConfig: NewDefaultGatekeeperConfig(),
		RateLimitConfig:  NewDefaultRateLimitConfig(),
		LogConfig:        logger.NewDefaultFileLogConfig(),
		Environment:      "prod",
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return cfg, nil
	}

	data, err := loadConfigFileContent(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

// loadConfigFileContent reads the config file, refusing oversized files
func loadConfigFileContent(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, errorwrapper.NewValidationError("config_file", filePath, "config file exceeds 10MB")
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

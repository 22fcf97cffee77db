// Package core wires configuration into the audit pipeline for the server and the CLI.
package core

import (
	"net"

	"github.com/aleister1102/pagecheck/internal/auditor"
	"github.com/aleister1102/pagecheck/internal/browser"
	"github.com/aleister1102/pagecheck/internal/config"
	"github.com/aleister1102/pagecheck/internal/gatekeeper"
	"github.com/aleister1102/pagecheck/internal/telemetry"
	"github.com/rs/zerolog"
)

// AuditorConfig translates the loaded configuration into pipeline settings
func AuditorConfig(cfg *config.GlobalConfig) auditor.Config {
	return auditor.Config{
		Strategies:   cfg.AuditConfig.Strategies(),
		SettleWindow: cfg.AuditConfig.SettleWindow(),
		Session: browser.SessionOptions{
			Viewport: browser.Viewport{
				Width:  cfg.BrowserConfig.ViewportWidth,
				Height: cfg.BrowserConfig.ViewportHeight,
			},
			UserAgent: cfg.BrowserConfig.UserAgent,
		},
		Limits: telemetry.Limits{
			MaxStorageFieldLength: cfg.AuditConfig.MaxStorageFieldLength,
			MaxContentLength:      cfg.AuditConfig.MaxContentLength,
		},
		Gatekeeper: gatekeeper.Config{
			EnforcePolicy:    cfg.AuditConfig.EnforcePolicy,
			AllowedPorts:     cfg.GatekeeperConfig.AllowedPorts,
			ResolveHostnames: cfg.GatekeeperConfig.ResolveHostnames,
			ResolveTimeout:   cfg.GatekeeperConfig.ResolveTimeout(),
		},
		DefaultTimeout: cfg.AuditConfig.DefaultTimeout(),
	}
}

// LauncherConfig translates the browser section into go-rod launch settings
func LauncherConfig(cfg *config.GlobalConfig) browser.RodLauncherConfig {
	return browser.RodLauncherConfig{
		ChromePath:  cfg.BrowserConfig.ChromePath,
		UserDataDir: cfg.BrowserConfig.UserDataDir,
		Headless:    cfg.BrowserConfig.Headless,
		NoSandbox:   cfg.BrowserConfig.NoSandbox,
		ExtraFlags:  cfg.BrowserConfig.ExtraFlags,
	}
}

// NewAuditor builds an Auditor backed by go-rod and the system resolver. metrics may be nil.
func NewAuditor(cfg *config.GlobalConfig, metrics auditor.Metrics, logger zerolog.Logger) *auditor.Auditor {
	launcher := browser.NewRodLauncher(LauncherConfig(cfg), logger)
	return auditor.NewAuditor(AuditorConfig(cfg), launcher, net.DefaultResolver, metrics, logger)
}

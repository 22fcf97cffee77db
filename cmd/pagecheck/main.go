package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/pagecheck/internal/config"
	"github.com/aleister1102/pagecheck/internal/core"
	"github.com/aleister1102/pagecheck/internal/logger"
	"github.com/aleister1102/pagecheck/internal/monitoring"
	"github.com/aleister1102/pagecheck/internal/server"
)

func main() {
	fmt.Println("pagecheck starting...")

	flags := ParseFlags()

	log.Println("[INFO] Main: Attempting to load global configuration...")
	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}

	overrides, err := config.LoadEnvOverrides()
	if err != nil {
		log.Fatalf("[FATAL] Main: %v", err)
	}
	gCfg.ApplyEnvOverrides(overrides)
	if flags.Port != 0 {
		gCfg.ServerConfig.Port = flags.Port
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Logger initialized successfully.")

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	zLogger.Info().
		Str("environment", gCfg.Environment).
		Bool("enforce_policy", gCfg.AuditConfig.EnforcePolicy).
		Msg("Configuration validated successfully.")
	if !gCfg.AuditConfig.EnforcePolicy {
		zLogger.Warn().Msg("Request policy enforcement is disabled, private addresses are reachable")
	}

	metrics := monitoring.NewMetrics()
	auditor := core.NewAuditor(gCfg, metrics, zLogger)
	srv := server.New(gCfg, auditor, metrics, zLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		zLogger.Error().Err(err).Msg("Server stopped with error")
		stop()
		os.Exit(1)
	}
	zLogger.Info().Msg("Server stopped.")
}

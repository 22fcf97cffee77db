package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aleister1102/pagecheck/internal/config"
	"github.com/aleister1102/pagecheck/internal/core"
	"github.com/aleister1102/pagecheck/internal/logger"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
)

// Auditor runs a single audit
type Auditor interface {
	Audit(ctx context.Context, req models.AuditRequest) models.AuditResult
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "[FATAL]", err)
		os.Exit(2)
	}

	gCfg, err := config.LoadGlobalConfig(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] Could not load global config using path '%s': %v\n", opts.Config, err)
		os.Exit(1)
	}
	overrides, err := config.LoadEnvOverrides()
	if err != nil {
		fmt.Fprintln(os.Stderr, "[FATAL]", err)
		os.Exit(1)
	}
	gCfg.ApplyEnvOverrides(overrides)
	if opts.NoPolicy {
		gCfg.AuditConfig.EnforcePolicy = false
	}
	if opts.Debug {
		gCfg.LogConfig.LogLevel = "debug"
	}
	// Logs go to stderr so stdout stays machine readable with --json
	gCfg.LogConfig.LogFile = ""

	if err := config.ValidateConfig(gCfg); err != nil {
		fmt.Fprintln(os.Stderr, "[FATAL] Configuration validation failed:", err)
		os.Exit(1)
	}

	zLogger, err := logger.New(gCfg.LogConfig, logger.WithConsole(os.Stderr))
	if err != nil {
		fmt.Fprintln(os.Stderr, "[FATAL] Could not initialize logger:", err)
		os.Exit(1)
	}

	targets, err := collectTargets(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "[FATAL]", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	auditor := core.NewAuditor(gCfg, nil, zLogger)
	timeout := gCfg.AuditConfig.DefaultTimeout()
	if t, ok := models.TimeoutFromMillis(int64(opts.Timeout)); ok {
		timeout = t
	}

	failed := runAudits(ctx, auditor, targets, runSettings{
		timeout:       timeout,
		enforcePolicy: gCfg.AuditConfig.EnforcePolicy,
		workers:       opts.Workers,
		json:          opts.JSON,
	}, os.Stdout, zLogger)

	if failed > 0 {
		stop()
		os.Exit(1)
	}
}

func collectTargets(opts Options) ([]string, error) {
	var targets []string
	if opts.URL != "" {
		targets = append(targets, opts.URL)
	}
	if opts.TargetsFile != "" {
		fromFile, err := core.NewTargetManager().LoadTargetsFromFile(opts.TargetsFile)
		if err != nil {
			return nil, err
		}
		targets = append(targets, fromFile...)
	}
	if len(targets) == 0 {
		return nil, errNoTargets
	}
	return targets, nil
}

type runSettings struct {
	timeout       time.Duration
	enforcePolicy bool
	workers       int
	json          bool
}

// runAudits audits every target with a fixed pool of workers and prints results in input
// order. It returns the number of failed audits.
func runAudits(ctx context.Context, auditor Auditor, targets []string, settings runSettings, out io.Writer, logger zerolog.Logger) int {
	results := make([]models.AuditResult, len(targets))
	jobs := make(chan int)

	workers := settings.workers
	if workers > len(targets) {
		workers = len(targets)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				req := models.NewAuditRequest(uuid.NewString(), targets[idx])
				req.Timeout = settings.timeout
				req.EnforcePolicy = settings.enforcePolicy
				results[idx] = auditor.Audit(ctx, req)
			}
		}()
	}

	for idx := range targets {
		if ctx.Err() != nil {
			results[idx] = models.TransportFailure(ctx.Err())
			continue
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for idx, result := range results {
		if !result.Succeeded() {
			failed++
		}
		if settings.json {
			if err := printJSON(out, result); err != nil {
				logger.Error().Err(err).Str("url", targets[idx]).Msg("Failed to encode result")
			}
			continue
		}
		printSummary(out, targets[idx], result)
	}
	return failed
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

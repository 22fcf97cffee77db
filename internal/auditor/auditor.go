// Package auditor runs the audit pipeline: validate the target, load it in an isolated
// browsing session behind the request gatekeeper, collect telemetry and classify the outcome.
package auditor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aleister1102/pagecheck/internal/browser"
	"github.com/aleister1102/pagecheck/internal/gatekeeper"
	"github.com/aleister1102/pagecheck/internal/logger"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/aleister1102/pagecheck/internal/telemetry"
	"github.com/aleister1102/pagecheck/internal/urlhandler"
	"github.com/rs/zerolog"
)

const finalizeTimeout = 30 * time.Second

// Config holds the process-wide settings of the pipeline.
type Config struct {
	Strategies     []browser.LoadStrategy
	SettleWindow   time.Duration
	Session        browser.SessionOptions
	Limits         telemetry.Limits
	Gatekeeper     gatekeeper.Config
	DefaultTimeout time.Duration
}

// Auditor is safe for concurrent use; every call to Audit gets its own engine and session.
type Auditor struct {
	config   Config
	launcher browser.Launcher
	resolver gatekeeper.Resolver
	metrics  Metrics
	logger   zerolog.Logger
}

// NewAuditor creates an Auditor. resolver is only used when hostname resolution is enabled;
// metrics may be nil.
func NewAuditor(cfg Config, launcher browser.Launcher, resolver gatekeeper.Resolver, metrics Metrics, logger zerolog.Logger) *Auditor {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = models.DefaultAuditTimeout
	}
	return &Auditor{
		config:   cfg,
		launcher: launcher,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger.With().Str("module", "Auditor").Logger(),
	}
}

// Audit runs one audit. It never returns an error: every failure is a classified result.
func (a *Auditor) Audit(ctx context.Context, req models.AuditRequest) (result models.AuditResult) {
	start := time.Now()
	log := logger.ForAudit(a.logger, req.ID)

	defer func() {
		a.metrics.ObserveAudit(result.Outcome(), time.Since(start))
	}()

	decoded, err := urlhandler.DecodeFetchURL(req.URL)
	if err != nil {
		log.Debug().Err(err).Str("url", req.URL).Msg("Rejected input URL")
		return models.InvalidURLFailure()
	}
	target, err := urlhandler.ParseTarget(decoded, req.EnforcePolicy)
	if err != nil {
		log.Debug().Err(err).Str("url", decoded).Msg("Rejected input URL")
		return models.InvalidURLFailure()
	}

	url := target.InputURL
	log = logger.WithTarget(log, url)
	log.Info().Msgf("Trying %s", url)
	defer func() {
		log.Info().Msgf("Finished with %s", url)
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Audit panicked")
			result = models.TransportFailure(fmt.Errorf("%v", r))
		}
	}()

	result = a.run(ctx, req, url, log)
	if result.Succeeded() {
		log.Info().Msgf("Successfully checked %s", url)
	}
	return result
}

func (a *Auditor) run(ctx context.Context, req models.AuditRequest, url string, logger zerolog.Logger) models.AuditResult {
	engine, err := a.launcher.Launch(ctx)
	if err != nil {
		return a.transportFailure(logger, url, err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close browser engine")
		}
	}()

	session, err := engine.NewSession(ctx, a.config.Session)
	if err != nil {
		return a.transportFailure(logger, url, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close browsing session")
		}
	}()

	if req.EnforcePolicy {
		gkCfg := a.config.Gatekeeper
		gkCfg.EnforcePolicy = true
		gk := gatekeeper.New(gkCfg, a.resolver, a.metrics, logger)
		if err := session.OnRequest(gk.Hook()); err != nil {
			return a.transportFailure(logger, url, err)
		}
	}

	collector := telemetry.NewCollector(a.config.Limits, logger)
	collector.Attach(session)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.config.DefaultTimeout
	}

	navigator := NewNavigator(a.config.Strategies, a.config.SettleWindow, a.metrics, logger)
	mainResponse, err := navigator.Navigate(ctx, session, url, timeout)
	if err != nil {
		if errors.Is(err, browser.ErrNavigationTimeout) {
			logger.Warn().Msgf("Failed checking %s: %s", url, models.ReasonPageTimeout)
			return models.PageTimeoutFailure()
		}
		return a.transportFailure(logger, url, err)
	}

	navigator.Settle(ctx)

	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	snapshot, err := collector.Finalize(finalizeCtx, session)
	if err != nil {
		return a.transportFailure(logger, url, err)
	}

	info, err := session.Info(finalizeCtx)
	if err != nil {
		return a.transportFailure(logger, url, err)
	}
	finalURL := info.URL
	if finalURL == "" {
		finalURL = url
	}

	failure, failed := Classify(Signals{
		Response:      *mainResponse,
		FinalURL:      finalURL,
		Title:         resolveTitle(info.Title, snapshot.Content),
		EnforcePolicy: req.EnforcePolicy,
	})
	if failed {
		logger.Warn().Int("status", mainResponse.Status).Msgf("Failed checking %s: %d", url, mainResponse.Status)
		return failure
	}

	return models.NewSuccessResult(models.AuditReport{
		InputURL:        url,
		FinalURL:        finalURL,
		Responses:       snapshot.Responses,
		ResponseHeaders: mainResponse.Headers,
		Status:          mainResponse.Status,
		Cookies:         snapshot.Cookies,
		LocalStorage:    snapshot.LocalStorage,
		SecurityInfo:    snapshot.SecurityInfo,
		Content:         snapshot.Content,
	})
}

func (a *Auditor) transportFailure(logger zerolog.Logger, url string, err error) models.AuditResult {
	logger.Warn().Err(err).Msgf("Failed checking %s: %v", url, err)
	return models.TransportFailure(err)
}

// Package telemetry gathers what an audited page did: the responses it received, its security
// state, and after navigation its cookies, local storage and rendered content.
package telemetry

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/aleister1102/pagecheck/internal/browser"
	"github.com/aleister1102/pagecheck/internal/common/errorwrapper"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/rs/zerolog"
)

// Limits bound the size of collected values. Zero values select the defaults.
type Limits struct {
	MaxStorageFieldLength int
	MaxContentLength      int
}

func (l Limits) withDefaults() Limits {
	if l.MaxStorageFieldLength <= 0 {
		l.MaxStorageFieldLength = models.MaxStorageFieldLength
	}
	if l.MaxContentLength <= 0 {
		l.MaxContentLength = models.MaxContentLength
	}
	return l
}

// Snapshot is everything collected for one audit.
type Snapshot struct {
	Responses    []models.ResponseRecord
	SecurityInfo models.SecurityState
	Cookies      []models.Cookie
	LocalStorage models.StorageSnapshot
	Content      string
}

// Collector is the event sink of one audit. Responses and security events arrive on the
// engine's goroutines; everything else is read by the pipeline after navigation.
type Collector struct {
	limits Limits
	logger zerolog.Logger

	mu        sync.Mutex
	responses []models.ResponseRecord
	security  models.SecurityState
}

// NewCollector creates an empty collector.
func NewCollector(limits Limits, logger zerolog.Logger) *Collector {
	return &Collector{
		limits:    limits.withDefaults(),
		logger:    logger.With().Str("component", "TelemetryCollector").Logger(),
		responses: make([]models.ResponseRecord, 0),
	}
}

// Attach subscribes the collector to the session. Call before navigating.
func (c *Collector) Attach(session browser.Session) {
	session.OnResponse(c.RecordResponse)
	session.OnSecurityStateChange(c.RecordSecurityState)
}

// RecordResponse appends a response in arrival order.
func (c *Collector) RecordResponse(resp browser.Response) {
	headers := make(map[string]string, len(resp.Headers))
	maps.Copy(headers, resp.Headers)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, models.ResponseRecord{
		URL:           resp.URL,
		RemoteAddress: resp.RemoteAddress,
		Headers:       headers,
	})
}

// RecordSecurityState overwrites the security slot with the latest event.
func (c *Collector) RecordSecurityState(ev browser.SecurityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.security = models.SecurityState{State: ev.State, Details: ev.Details}
}

// Responses returns a copy of the responses recorded so far.
func (c *Collector) Responses() []models.ResponseRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.responses)
}

// SecurityState returns the latest security state.
func (c *Collector) SecurityState() models.SecurityState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.security
}

// Finalize reads the session's content, cookies and local storage. A storage failure is logged
// and yields an empty snapshot; content or cookie failures are returned.
func (c *Collector) Finalize(ctx context.Context, session browser.Session) (*Snapshot, error) {
	content, err := session.Content(ctx)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "read page content")
	}

	engineCookies, err := session.Cookies(ctx)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "read cookies")
	}
	cookies := convertCookies(engineCookies)

	storage, err := c.readStorage(ctx, session)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Accessing localStorage failed")
		storage = models.StorageSnapshot{}
	}

	return &Snapshot{
		Responses:    c.Responses(),
		SecurityInfo: c.SecurityState(),
		Cookies:      cookies,
		LocalStorage: storage,
		Content:      Truncate(content, c.limits.MaxContentLength),
	}, nil
}

func (c *Collector) readStorage(ctx context.Context, session browser.Session) (models.StorageSnapshot, error) {
	raw, err := session.Evaluate(ctx, buildStorageScript(c.limits.MaxStorageFieldLength))
	if err != nil {
		return nil, err
	}
	return parseStorage(raw, c.limits.MaxStorageFieldLength)
}

func convertCookies(in []browser.Cookie) []models.Cookie {
	out := make([]models.Cookie, 0, len(in))
	for _, ck := range in {
		out = append(out, models.Cookie(ck))
	}
	return out
}

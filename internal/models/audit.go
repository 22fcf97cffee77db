package models

import (
	"net/http"
	"time"
)

// Audit defaults shared by the server, the CLI and the pipeline.
const (
	DefaultAuditTimeout   = 25 * time.Second
	MaxAuditTimeout       = 5 * time.Minute
	DefaultSettleWindow   = 10 * time.Second
	MaxStorageFieldLength = 100
	MaxContentLength      = 5000000
)

// AuditRequest describes one audit. It is never mutated once the pipeline starts.
type AuditRequest struct {
	ID            string
	URL           string
	Timeout       time.Duration
	EnforcePolicy bool
}

// NewAuditRequest returns a request with the default timeout and policy enforcement enabled.
func NewAuditRequest(id, rawURL string) AuditRequest {
	return AuditRequest{
		ID:            id,
		URL:           rawURL,
		Timeout:       DefaultAuditTimeout,
		EnforcePolicy: true,
	}
}

// TimeoutFromMillis converts a caller-supplied timeout, capped at MaxAuditTimeout. It reports
// false for non-positive values.
func TimeoutFromMillis(ms int64) (time.Duration, bool) {
	if ms <= 0 {
		return 0, false
	}
	if ms > MaxAuditTimeout.Milliseconds() {
		return MaxAuditTimeout, true
	}
	return time.Duration(ms) * time.Millisecond, true
}

// ParsedTarget is the validated form of AuditRequest.URL.
type ParsedTarget struct {
	InputURL string
	Scheme   string
	Hostname string
	Port     string
}

// ResponseRecord is one response observed by the browsing session.
type ResponseRecord struct {
	URL           string            `json:"url"`
	RemoteAddress string            `json:"remote_address,omitempty"`
	Headers       map[string]string `json:"headers"`
}

// SecurityState holds the last security classification reported by the engine.
type SecurityState struct {
	State   string         `json:"securityState,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Cookie mirrors the engine's cookie record. Field names follow the DevTools protocol.
type Cookie struct {
	Name         string  `json:"name"`
	Value        string  `json:"value"`
	Domain       string  `json:"domain"`
	Path         string  `json:"path"`
	Expires      float64 `json:"expires"`
	Size         int     `json:"size"`
	HTTPOnly     bool    `json:"httpOnly"`
	Secure       bool    `json:"secure"`
	Session      bool    `json:"session"`
	SameSite     string  `json:"sameSite,omitempty"`
	Priority     string  `json:"priority,omitempty"`
	SourceScheme string  `json:"sourceScheme,omitempty"`
	SourcePort   int     `json:"sourcePort,omitempty"`
}

// StorageSnapshot maps truncated localStorage keys to truncated values.
type StorageSnapshot map[string]string

// AuditReport is the success variant of AuditResult.
type AuditReport struct {
	InputURL        string            `json:"input_url"`
	FinalURL        string            `json:"final_url"`
	Responses       []ResponseRecord  `json:"responses"`
	ResponseHeaders map[string]string `json:"response_headers"`
	Status          int               `json:"status"`
	Cookies         []Cookie          `json:"cookies"`
	LocalStorage    StorageSnapshot   `json:"localStorage"`
	SecurityInfo    SecurityState     `json:"security_info"`
	Content         string            `json:"content"`
}

// AuditFailure is the failure variant of AuditResult.
type AuditFailure struct {
	Code   FailureCode `json:"code"`
	Reason string      `json:"reason"`
}

// AuditResult carries exactly one of Report or Failure.
type AuditResult struct {
	Report  *AuditReport
	Failure *AuditFailure
}

// NewSuccessResult wraps a report.
func NewSuccessResult(report AuditReport) AuditResult {
	return AuditResult{Report: &report}
}

// NewFailureResult wraps a classified failure.
func NewFailureResult(code FailureCode, reason string) AuditResult {
	return AuditResult{Failure: &AuditFailure{Code: code, Reason: reason}}
}

// Succeeded reports whether the audit produced a report.
func (r AuditResult) Succeeded() bool {
	return r.Report != nil && r.Failure == nil
}

// HTTPStatus is the status the HTTP layer answers with for this result.
func (r AuditResult) HTTPStatus() int {
	if r.Succeeded() {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// Outcome is a short label for logs and metrics.
func (r AuditResult) Outcome() string {
	if r.Succeeded() {
		return "success"
	}
	if r.Failure != nil {
		return string(r.Failure.Code)
	}
	return "unknown"
}

package logger

import "github.com/rs/zerolog"

// ForAudit returns the child logger for one audit. Every entry carries the audit ID so the
// lines of concurrent audits can be told apart.
func ForAudit(base zerolog.Logger, auditID string) zerolog.Logger {
	return base.With().Str("audit_id", auditID).Logger()
}

// WithTarget adds the normalized target URL once the input has been accepted
func WithTarget(l zerolog.Logger, url string) zerolog.Logger {
	return l.With().Str("url", url).Logger()
}

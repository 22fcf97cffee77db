package auditor

import (
	"strings"

	"github.com/aleister1102/pagecheck/internal/browser"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/aleister1102/pagecheck/internal/urlhandler"
)

var htmlContentTypes = []string{"text/html", "application/xhtml+xml"}

// Signals are the facts the classifier decides on.
type Signals struct {
	Response      browser.Response
	FinalURL      string
	Title         string
	EnforcePolicy bool
}

// Classify applies the outcome rules in order. It returns the failure and true when the audit
// failed, or false when a report should be built.
func Classify(s Signals) (models.AuditResult, bool) {
	if !urlhandler.ValidateFinalURL(s.FinalURL, s.EnforcePolicy) {
		return models.NewFailureResult(models.FailureInvalidFinalURL, models.ReasonInvalidFinalURL), true
	}

	if s.Response.Status < 200 || s.Response.Status > 299 {
		return models.HTTPStatusFailure(s.Response.Status, s.Title), true
	}

	if !isHTMLContentType(s.Response.Headers["content-type"]) {
		return models.NewFailureResult(models.FailureContentTypeMismatch, models.ReasonContentTypeMismatch), true
	}

	return models.AuditResult{}, false
}

func isHTMLContentType(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, prefix := range htmlContentTypes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

package models

import "fmt"

// FailureCode is the stable identifier of a failed audit.
type FailureCode string

const (
	FailureInvalidURL          FailureCode = "InvalidUrl"
	FailurePageTimeout         FailureCode = "PageTimeout"
	FailureTransport           FailureCode = "TransportError"
	FailureContentTypeMismatch FailureCode = "ContentTypeMismatch"
	FailureHTTPStatus          FailureCode = "HttpStatusFailure"
	FailureInvalidFinalURL     FailureCode = "InvalidFinalUrl"
)

// Reason strings returned to callers.
const (
	ReasonPrefix              = "Failed to fetch this URL: "
	ReasonInvalidInputURL     = ReasonPrefix + "invalid URL"
	ReasonPageTimeout         = ReasonPrefix + "Page timeout"
	ReasonInvalidFinalURL     = "Invalid URL."
	ReasonContentTypeMismatch = "Page does not have text/html Content-Type"
)

// InvalidURLFailure is returned before any browsing session exists.
func InvalidURLFailure() AuditResult {
	return NewFailureResult(FailureInvalidURL, ReasonInvalidInputURL)
}

// PageTimeoutFailure is returned when every load strategy timed out.
func PageTimeoutFailure() AuditResult {
	return NewFailureResult(FailurePageTimeout, ReasonPageTimeout)
}

// TransportFailure embeds an unexpected engine error.
func TransportFailure(err error) AuditResult {
	desc := "unknown error"
	if err != nil {
		desc = err.Error()
	}
	return NewFailureResult(FailureTransport, ReasonPrefix+desc)
}

// HTTPStatusFailure reports a non-2xx top-level response.
func HTTPStatusFailure(status int, title string) AuditResult {
	return NewFailureResult(FailureHTTPStatus, fmt.Sprintf("%s%d (%s)", ReasonPrefix, status, title))
}

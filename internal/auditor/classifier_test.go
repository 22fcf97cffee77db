package auditor

import (
	"testing"

	"github.com/aleister1102/pagecheck/internal/browser"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	html := map[string]string{"content-type": "text/html; charset=utf-8"}

	tests := []struct {
		name       string
		signals    Signals
		wantFailed bool
		wantCode   models.FailureCode
		wantReason string
	}{
		{
			name:    "success",
			signals: Signals{Response: browser.Response{Status: 200, Headers: html}, FinalURL: "https://example.com/", EnforcePolicy: true},
		},
		{
			name:    "xhtml",
			signals: Signals{Response: browser.Response{Status: 204, Headers: map[string]string{"content-type": "application/xhtml+xml"}}, FinalURL: "https://example.com/", EnforcePolicy: true},
		},
		{
			name:       "invalid final url wins over status",
			signals:    Signals{Response: browser.Response{Status: 500, Headers: html}, FinalURL: "http://router.lan/", EnforcePolicy: true},
			wantFailed: true,
			wantCode:   models.FailureInvalidFinalURL,
			wantReason: "Invalid URL.",
		},
		{
			name:    "final url ignored without enforcement",
			signals: Signals{Response: browser.Response{Status: 200, Headers: html}, FinalURL: "http://router.lan/", EnforcePolicy: false},
		},
		{
			name:       "not found",
			signals:    Signals{Response: browser.Response{Status: 404, Headers: html}, FinalURL: "https://example.com/x", Title: "Not Found", EnforcePolicy: true},
			wantFailed: true,
			wantCode:   models.FailureHTTPStatus,
			wantReason: "Failed to fetch this URL: 404 (Not Found)",
		},
		{
			name:       "redirect status",
			signals:    Signals{Response: browser.Response{Status: 301, Headers: html}, FinalURL: "https://example.com/", EnforcePolicy: true},
			wantFailed: true,
			wantCode:   models.FailureHTTPStatus,
			wantReason: "Failed to fetch this URL: 301 ()",
		},
		{
			name:       "json",
			signals:    Signals{Response: browser.Response{Status: 200, Headers: map[string]string{"content-type": "application/json"}}, FinalURL: "https://example.com/", EnforcePolicy: true},
			wantFailed: true,
			wantCode:   models.FailureContentTypeMismatch,
			wantReason: "Page does not have text/html Content-Type",
		},
		{
			name:       "missing content type",
			signals:    Signals{Response: browser.Response{Status: 200}, FinalURL: "https://example.com/", EnforcePolicy: true},
			wantFailed: true,
			wantCode:   models.FailureContentTypeMismatch,
			wantReason: "Page does not have text/html Content-Type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, failed := Classify(tt.signals)
			assert.Equal(t, tt.wantFailed, failed)
			if !tt.wantFailed {
				return
			}
			if assert.NotNil(t, result.Failure) {
				assert.Equal(t, tt.wantCode, result.Failure.Code)
				assert.Equal(t, tt.wantReason, result.Failure.Reason)
			}
		})
	}
}

func TestResolveTitle(t *testing.T) {
	tests := []struct {
		name    string
		engine  string
		content string
		want    string
	}{
		{"engine title", "Engine", "<title>Doc</title>", "Engine"},
		{"fallback", "", "<html><head><title> Doc Title </title></head></html>", "Doc Title"},
		{"first title only", "  ", "<title>One</title><svg><title>Two</title></svg>", "One"},
		{"no title", "", "<html><body>x</body></html>", ""},
		{"no content", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveTitle(tt.engine, tt.content))
		})
	}
}

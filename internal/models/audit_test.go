package models

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditRequestDefaults(t *testing.T) {
	req := NewAuditRequest("id-1", "https://example.com/")
	assert.Equal(t, DefaultAuditTimeout, req.Timeout)
	assert.True(t, req.EnforcePolicy)
	assert.Equal(t, "id-1", req.ID)
}

func TestAuditResult_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, NewSuccessResult(AuditReport{}).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InvalidURLFailure().HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, AuditResult{}.HTTPStatus())
}

func TestAuditResult_Outcome(t *testing.T) {
	assert.Equal(t, "success", NewSuccessResult(AuditReport{}).Outcome())
	assert.Equal(t, "PageTimeout", PageTimeoutFailure().Outcome())
	assert.Equal(t, "unknown", AuditResult{}.Outcome())
}

func TestFailureReasons(t *testing.T) {
	tests := []struct {
		name   string
		result AuditResult
		code   FailureCode
		reason string
	}{
		{"invalid url", InvalidURLFailure(), FailureInvalidURL, "Failed to fetch this URL: invalid URL"},
		{"timeout", PageTimeoutFailure(), FailurePageTimeout, "Failed to fetch this URL: Page timeout"},
		{"transport", TransportFailure(errors.New("net::ERR_CONNECTION_REFUSED")), FailureTransport, "Failed to fetch this URL: net::ERR_CONNECTION_REFUSED"},
		{"nil transport", TransportFailure(nil), FailureTransport, "Failed to fetch this URL: unknown error"},
		{"status", HTTPStatusFailure(503, "Service Unavailable"), FailureHTTPStatus, "Failed to fetch this URL: 503 (Service Unavailable)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.result.Failure)
			assert.Nil(t, tt.result.Report)
			assert.Equal(t, tt.code, tt.result.Failure.Code)
			assert.Equal(t, tt.reason, tt.result.Failure.Reason)
		})
	}
}

func TestAuditResult_MarshalJSONSuccess(t *testing.T) {
	result := NewSuccessResult(AuditReport{
		InputURL: "https://example.com",
		FinalURL: "https://example.com/",
		Status:   200,
		Responses: []ResponseRecord{
			{URL: "https://example.com/", RemoteAddress: "93.184.216.34:443", Headers: map[string]string{"server": "ECS"}},
			{URL: "https://example.com/a.css", Headers: map[string]string{}},
		},
		SecurityInfo: SecurityState{State: "secure"},
		Content:      "<html></html>",
	})

	body, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, "https://example.com", decoded["input_url"])
	assert.Equal(t, "https://example.com/", decoded["final_url"])
	assert.Equal(t, float64(200), decoded["status"])
	assert.Equal(t, []any{}, decoded["cookies"])
	assert.Equal(t, map[string]any{}, decoded["localStorage"])
	assert.Equal(t, map[string]any{}, decoded["response_headers"])
	assert.Equal(t, map[string]any{"securityState": "secure"}, decoded["security_info"])
	assert.NotContains(t, decoded, "reason")

	responses := decoded["responses"].([]any)
	require.Len(t, responses, 2)
	assert.Equal(t, "93.184.216.34:443", responses[0].(map[string]any)["remote_address"])
	assert.NotContains(t, responses[1].(map[string]any), "remote_address")
}

func TestAuditResult_MarshalJSONFailure(t *testing.T) {
	body, err := json.Marshal(HTTPStatusFailure(404, "Not Found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"code":"HttpStatusFailure","reason":"Failed to fetch this URL: 404 (Not Found)"}`, string(body))

	body, err = json.Marshal(AuditResult{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"code":"TransportError","reason":"Failed to fetch this URL: unknown error"}`, string(body))
}

func TestTimeoutFromMillis(t *testing.T) {
	tests := []struct {
		name   string
		ms     int64
		want   time.Duration
		wantOK bool
	}{
		{name: "zero", ms: 0, wantOK: false},
		{name: "negative", ms: -5, wantOK: false},
		{name: "regular", ms: 1500, want: 1500 * time.Millisecond, wantOK: true},
		{name: "at cap", ms: MaxAuditTimeout.Milliseconds(), want: MaxAuditTimeout, wantOK: true},
		{name: "above cap", ms: MaxAuditTimeout.Milliseconds() + 1, want: MaxAuditTimeout, wantOK: true},
		{name: "would overflow", ms: math.MaxInt64, want: MaxAuditTimeout, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TimeoutFromMillis(tt.ms)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

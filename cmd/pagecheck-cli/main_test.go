package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

type stubAuditor struct {
	mu       sync.Mutex
	requests []models.AuditRequest
	results  map[string]models.AuditResult
}

func (s *stubAuditor) Audit(_ context.Context, req models.AuditRequest) models.AuditResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if r, ok := s.results[req.URL]; ok {
		return r
	}
	return models.InvalidURLFailure()
}

func report(input string) models.AuditResult {
	return models.NewSuccessResult(models.AuditReport{
		InputURL: input,
		FinalURL: input + "/",
		Status:   200,
		Responses: []models.ResponseRecord{
			{URL: input + "/"},
			{URL: "https://cdn.example.net/app.js"},
		},
		ResponseHeaders: map[string]string{"server": "nginx"},
		SecurityInfo:    models.SecurityState{State: "secure"},
	})
}

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions([]string{"--url", "https://example.com", "-t", "5000", "--no-policy", "--json"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", opts.URL)
	assert.Equal(t, 5000, opts.Timeout)
	assert.True(t, opts.NoPolicy)
	assert.True(t, opts.JSON)
	assert.Equal(t, 1, opts.Workers)
}

func TestParseOptions_RequiresTarget(t *testing.T) {
	_, err := parseOptions([]string{"--json"})
	assert.ErrorIs(t, err, errNoTargets)
}

func TestParseOptions_Help(t *testing.T) {
	_, err := parseOptions([]string{"--help"})
	var flagsErr *flags.Error
	require.True(t, errors.As(err, &flagsErr))
	assert.Equal(t, flags.ErrHelp, flagsErr.Type)
}

func TestCollectTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.example\n# skip\nhttps://b.example\n"), 0o600))

	targets, err := collectTargets(Options{URL: "https://first.example", TargetsFile: path})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://first.example", "https://a.example", "https://b.example"}, targets)
}

func TestRunAudits_SummaryInInputOrder(t *testing.T) {
	auditor := &stubAuditor{results: map[string]models.AuditResult{
		"https://a.example": report("https://a.example"),
		"https://c.example": report("https://c.example"),
	}}
	targets := []string{"https://a.example", "bogus", "https://c.example"}
	var out bytes.Buffer

	failed := runAudits(context.Background(), auditor, targets, runSettings{
		timeout:       3 * time.Second,
		enforcePolicy: true,
		workers:       3,
	}, &out, zerolog.Nop())

	assert.Equal(t, 1, failed)
	text := out.String()
	a := strings.Index(text, "OK https://a.example")
	b := strings.Index(text, "FAIL bogus")
	c := strings.Index(text, "OK https://c.example")
	require.True(t, a >= 0 && b >= 0 && c >= 0, text)
	assert.True(t, a < b && b < c)
	assert.Contains(t, text, models.ReasonInvalidInputURL)
	assert.Contains(t, text, "2 hosts")
	assert.Contains(t, text, "security state: secure")
	assert.Contains(t, text, "header server: nginx")

	require.Len(t, auditor.requests, 3)
	ids := map[string]bool{}
	for _, req := range auditor.requests {
		assert.Equal(t, 3*time.Second, req.Timeout)
		assert.True(t, req.EnforcePolicy)
		assert.NotEmpty(t, req.ID)
		ids[req.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestRunAudits_JSONLines(t *testing.T) {
	auditor := &stubAuditor{results: map[string]models.AuditResult{
		"https://a.example": report("https://a.example"),
	}}
	var out bytes.Buffer

	failed := runAudits(context.Background(), auditor, []string{"https://a.example", "bogus"}, runSettings{
		workers: 1,
		json:    true,
	}, &out, zerolog.Nop())

	assert.Equal(t, 1, failed)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, true, first["success"])
	assert.Equal(t, false, second["success"])
}

func TestRunAudits_CancelledContext(t *testing.T) {
	auditor := &stubAuditor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	failed := runAudits(ctx, auditor, []string{"https://a.example", "https://b.example"}, runSettings{workers: 2}, &out, zerolog.Nop())

	assert.Equal(t, 2, failed)
	assert.Empty(t, auditor.requests)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "example.com", hostOf("https://example.com:8443/x"))
	assert.Equal(t, "", hostOf("::bad"))
}

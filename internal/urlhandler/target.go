package urlhandler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/aleister1102/pagecheck/internal/models"
)

// DecodeFetchURL applies form decoding to a fetch_url value: '+' becomes a space, then
// percent escapes are resolved.
func DecodeFetchURL(raw string) (string, error) {
	decoded, err := url.PathUnescape(strings.ReplaceAll(raw, "+", " "))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	return decoded, nil
}

// ParseTarget validates a decoded URL for auditing. Only absolute http and https URLs with a
// hostname are accepted; with enforcement on, the hostname's TLD must exist as well.
func ParseTarget(decoded string, enforcePolicy bool) (models.ParsedTarget, error) {
	parsed, err := url.Parse(decoded)
	if err != nil {
		return models.ParsedTarget{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if !parsed.IsAbs() {
		return models.ParsedTarget{}, fmt.Errorf("%w: URL is not absolute", ErrInvalidURL)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return models.ParsedTarget{}, fmt.Errorf("%w: scheme %q is not allowed", ErrInvalidURL, parsed.Scheme)
	}

	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "" {
		return models.ParsedTarget{}, fmt.Errorf("%w: URL lacks a hostname", ErrInvalidURL)
	}

	if enforcePolicy && !HasKnownTLD(hostname) {
		return models.ParsedTarget{}, fmt.Errorf("%w: hostname %q has no known top-level domain", ErrInvalidURL, hostname)
	}

	return models.ParsedTarget{
		InputURL: decoded,
		Scheme:   scheme,
		Hostname: hostname,
		Port:     parsed.Port(),
	}, nil
}

// ValidateFinalURL checks the URL a page ended up on after redirects.
func ValidateFinalURL(finalURL string, enforcePolicy bool) bool {
	if !enforcePolicy {
		return true
	}
	parsed, err := url.Parse(finalURL)
	if err != nil {
		return false
	}
	return HasKnownTLD(parsed.Hostname())
}

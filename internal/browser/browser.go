// Package browser defines the browsing-engine capability used by the audit pipeline and
// provides a go-rod implementation of it.
package browser

import (
	"context"
	"net/url"
)

// LoadStrategy names the page lifecycle event a navigation waits for.
type LoadStrategy string

const (
	StrategyNetworkIdle      LoadStrategy = "networkidle"
	StrategyDOMContentLoaded LoadStrategy = "domcontentloaded"
	StrategyLoad             LoadStrategy = "load"
)

// DefaultStrategies is the fallback order used when none is configured.
var DefaultStrategies = []LoadStrategy{StrategyNetworkIdle, StrategyDOMContentLoaded}

// ParseLoadStrategy accepts the lower-case strategy names.
func ParseLoadStrategy(name string) (LoadStrategy, bool) {
	switch LoadStrategy(name) {
	case StrategyNetworkIdle, StrategyDOMContentLoaded, StrategyLoad:
		return LoadStrategy(name), true
	}
	return "", false
}

// Viewport is the emulated window size.
type Viewport struct {
	Width  int
	Height int
}

// SessionOptions configure a new isolated session.
type SessionOptions struct {
	Viewport  Viewport
	UserAgent string
}

// Request is an outbound request paused by the interception hook.
type Request struct {
	URL          *url.URL
	Method       string
	ResourceType string
}

// Verdict is the interception hook's answer for one request.
type Verdict bool

const (
	Allow Verdict = true
	Block Verdict = false
)

// RequestHook decides synchronously whether a paused request may proceed.
type RequestHook func(Request) Verdict

// Response is a response observed by the session.
type Response struct {
	URL           string
	Status        int
	Headers       map[string]string
	RemoteAddress string
}

// SecurityEvent is a security-state change reported by the engine.
type SecurityEvent struct {
	State   string
	Details map[string]any
}

// Cookie is the engine's cookie record, JSON shaped like the DevTools protocol.
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

// PageInfo is the current state of the session's main frame.
type PageInfo struct {
	URL   string
	Title string
}

// Launcher starts a browser engine.
type Launcher interface {
	Launch(ctx context.Context) (Engine, error)
}

// Engine is a running browser process.
type Engine interface {
	NewSession(ctx context.Context, opts SessionOptions) (Session, error)
	Close() error
}

// Session is a single-use isolated page context.
//
// Hooks and listeners must be registered before Navigate. Listeners are called from the
// engine's event goroutine; the hook is called once per request and blocks that request
// until it returns.
type Session interface {
	OnRequest(hook RequestHook) error
	OnResponse(listener func(Response))
	OnSecurityStateChange(listener func(SecurityEvent))

	// Navigate loads url and waits for the strategy's lifecycle event. It returns the main
	// document's response, ErrNavigationTimeout when ctx expires first, or another error.
	Navigate(ctx context.Context, url string, strategy LoadStrategy) (*Response, error)

	Cookies(ctx context.Context) ([]Cookie, error)
	// Evaluate runs a function expression in the page and returns its string result.
	Evaluate(ctx context.Context, script string) (string, error)
	Content(ctx context.Context) (string, error)
	Info(ctx context.Context) (PageInfo, error)
	Close() error
}

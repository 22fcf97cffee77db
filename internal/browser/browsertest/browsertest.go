// Package browsertest provides an in-memory browser engine for tests of code that depends on
// the browser package.
package browsertest

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/aleister1102/pagecheck/internal/browser"
)

// Page scripts what a default navigation does: the main document response, the sub-resources
// it requests and the security events it emits.
type Page struct {
	Main         browser.Response
	SubResources []browser.Response
	Security     []browser.SecurityEvent
	Info         browser.PageInfo
	Content      string
	Cookies      []browser.Cookie
	// Storage is the raw result of any Evaluate call.
	Storage string
}

// NavigateFunc replaces the default navigation behaviour.
type NavigateFunc func(ctx context.Context, s *Session, target string, strategy browser.LoadStrategy) (*browser.Response, error)

// Session implements browser.Session.
type Session struct {
	Page         Page
	NavigateFunc NavigateFunc

	CookiesErr  error
	EvaluateErr error
	ContentErr  error
	InfoErr     error

	mu                sync.Mutex
	hook              browser.RequestHook
	responseListeners []func(browser.Response)
	securityListeners []func(browser.SecurityEvent)
	attempts          []browser.LoadStrategy
	blocked           []string
	closeCalls        int
}

var _ browser.Session = (*Session)(nil)

// NewSession returns a session that serves page.
func NewSession(page Page) *Session {
	return &Session{Page: page}
}

func (s *Session) OnRequest(hook browser.RequestHook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hook != nil {
		return errors.New("request hook already installed")
	}
	s.hook = hook
	return nil
}

func (s *Session) OnResponse(listener func(browser.Response)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseListeners = append(s.responseListeners, listener)
}

func (s *Session) OnSecurityStateChange(listener func(browser.SecurityEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.securityListeners = append(s.securityListeners, listener)
}

func (s *Session) Navigate(ctx context.Context, target string, strategy browser.LoadStrategy) (*browser.Response, error) {
	s.mu.Lock()
	s.attempts = append(s.attempts, strategy)
	s.mu.Unlock()

	if s.NavigateFunc != nil {
		return s.NavigateFunc(ctx, s, target, strategy)
	}
	return s.DefaultNavigate(ctx, target)
}

// DefaultNavigate loads Page: every request goes through the hook, and only allowed requests
// produce a response.
func (s *Session) DefaultNavigate(ctx context.Context, target string) (*browser.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, browser.ErrNavigationTimeout
	}

	main := s.Page.Main
	if main.URL == "" {
		main.URL = target
	}
	if s.Request(main.URL) == browser.Block {
		return nil, &browser.NavigationError{URL: target, Reason: "net::ERR_BLOCKED_BY_CLIENT"}
	}
	s.EmitResponse(main)

	for _, sub := range s.Page.SubResources {
		if s.Request(sub.URL) == browser.Allow {
			s.EmitResponse(sub)
		}
	}
	for _, ev := range s.Page.Security {
		s.EmitSecurity(ev)
	}
	return &main, nil
}

// Request runs the installed hook for rawURL. Requests are allowed when no hook is installed.
func (s *Session) Request(rawURL string) browser.Verdict {
	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()

	if hook == nil {
		return browser.Allow
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return browser.Block
	}
	verdict := hook(browser.Request{URL: u, Method: "GET"})
	if verdict == browser.Block {
		s.mu.Lock()
		s.blocked = append(s.blocked, rawURL)
		s.mu.Unlock()
	}
	return verdict
}

// EmitResponse delivers resp to the response listeners.
func (s *Session) EmitResponse(resp browser.Response) {
	s.mu.Lock()
	listeners := append([]func(browser.Response){}, s.responseListeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(resp)
	}
}

// EmitSecurity delivers ev to the security listeners.
func (s *Session) EmitSecurity(ev browser.SecurityEvent) {
	s.mu.Lock()
	listeners := append([]func(browser.SecurityEvent){}, s.securityListeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(ev)
	}
}

func (s *Session) Cookies(context.Context) ([]browser.Cookie, error) {
	if s.CookiesErr != nil {
		return nil, s.CookiesErr
	}
	return s.Page.Cookies, nil
}

func (s *Session) Evaluate(context.Context, string) (string, error) {
	if s.EvaluateErr != nil {
		return "", s.EvaluateErr
	}
	return s.Page.Storage, nil
}

func (s *Session) Content(context.Context) (string, error) {
	if s.ContentErr != nil {
		return "", s.ContentErr
	}
	return s.Page.Content, nil
}

func (s *Session) Info(context.Context) (browser.PageInfo, error) {
	if s.InfoErr != nil {
		return browser.PageInfo{}, s.InfoErr
	}
	return s.Page.Info, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return nil
}

// Attempts returns the strategies Navigate was called with, in order.
func (s *Session) Attempts() []browser.LoadStrategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]browser.LoadStrategy{}, s.attempts...)
}

// Blocked returns the URLs the hook refused.
func (s *Session) Blocked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.blocked...)
}

// Closed reports whether Close was called at least once.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCalls > 0
}

// Engine implements browser.Engine and hands out a single session.
type Engine struct {
	Session       *Session
	NewSessionErr error

	mu       sync.Mutex
	sessions int
	closed   bool
	options  browser.SessionOptions
}

var _ browser.Engine = (*Engine)(nil)

func (e *Engine) NewSession(_ context.Context, opts browser.SessionOptions) (browser.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.NewSessionErr != nil {
		return nil, e.NewSessionErr
	}
	e.sessions++
	e.options = opts
	return e.Session, nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// Sessions returns how many sessions were created.
func (e *Engine) Sessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Options returns the options of the last session created.
func (e *Engine) Options() browser.SessionOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.options
}

// Launcher implements browser.Launcher.
type Launcher struct {
	Engine    *Engine
	LaunchErr error

	mu       sync.Mutex
	launches int
}

var _ browser.Launcher = (*Launcher)(nil)

// NewLauncher returns a launcher whose engine serves session.
func NewLauncher(session *Session) *Launcher {
	return &Launcher{Engine: &Engine{Session: session}}
}

func (l *Launcher) Launch(context.Context) (browser.Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.LaunchErr != nil {
		return nil, l.LaunchErr
	}
	return l.Engine, nil
}

// Launches returns how many times Launch was called.
func (l *Launcher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

package browser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/aleister1102/pagecheck/internal/common/errorwrapper"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

var lifecycleEvents = map[LoadStrategy]string{
	StrategyNetworkIdle:      "networkIdle",
	StrategyDOMContentLoaded: "DOMContentLoaded",
	StrategyLoad:             "load",
}

type rodSession struct {
	page      *rod.Page
	incognito *rod.Browser
	root      *rod.Browser
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu                sync.Mutex
	responseListeners []func(Response)
	securityListeners []func(SecurityEvent)
	router            *rod.HijackRouter
	lastMain          *Response

	closeOnce sync.Once
	closeErr  error
}

func newRodSession(page *rod.Page, incognito, root *rod.Browser, logger zerolog.Logger) *rodSession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &rodSession{
		page:      page,
		incognito: incognito,
		root:      root,
		logger:    logger.With().Str("component", "RodSession").Str("target_id", string(page.TargetID)).Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}

	// Keep the domains on for the whole session so per-navigation waiters never turn them off.
	page.EnableDomain(&proto.PageEnable{})
	page.EnableDomain(&proto.NetworkEnable{})
	page.EnableDomain(&proto.SecurityEnable{})
	if err := (proto.PageSetLifecycleEventsEnabled{Enabled: true}).Call(page); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to enable lifecycle events")
	}

	// The subscription is taken here, before any navigation; only the loop runs async.
	go page.Context(ctx).EachEvent(
		func(e *proto.NetworkResponseReceived) {
			s.dispatchResponse(e)
		},
		func(e *proto.SecuritySecurityStateChanged) {
			s.dispatchSecurity(e)
		},
		func(e *proto.TargetAttachedToTarget) {
			go s.attachChild(e.SessionID)
		},
	)()

	// Out-of-process iframes and workers are separate targets. They start paused so their
	// listeners exist before the first request.
	if err := (proto.TargetSetAutoAttach{AutoAttach: true, WaitForDebuggerOnStart: true, Flatten: true}).Call(page); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to enable auto attach")
	}

	return s
}

// attachChild subscribes to a child target's responses and nested targets, then resumes it.
func (s *rodSession) attachChild(sessionID proto.TargetSessionID) {
	child := s.root.Context(s.ctx).PageFromSession(sessionID)

	go child.EachEvent(
		func(e *proto.NetworkResponseReceived) {
			s.dispatchResponse(e)
		},
		func(e *proto.TargetAttachedToTarget) {
			go s.attachChild(e.SessionID)
		},
	)()

	if err := (proto.TargetSetAutoAttach{AutoAttach: true, WaitForDebuggerOnStart: true, Flatten: true}).Call(child); err != nil {
		s.logger.Debug().Err(err).Str("session_id", string(sessionID)).Msg("Failed to enable auto attach on child target")
	}
	if err := (proto.RuntimeRunIfWaitingForDebugger{}).Call(child); err != nil {
		s.logger.Debug().Err(err).Str("session_id", string(sessionID)).Msg("Failed to resume child target")
	}
}

// OnRequest installs hook at browser scope. The engine runs one session, so every target of
// the browser belongs to this audit, including out-of-process frames and workers.
func (s *rodSession) OnRequest(hook RequestHook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.router != nil {
		return errors.New("request hook already installed")
	}

	router := s.root.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		h.OnError = func(err error) {
			s.logger.Debug().Err(err).Msg("Interception call failed")
		}

		req := Request{
			URL:          h.Request.URL(),
			Method:       h.Request.Method(),
			ResourceType: string(h.Request.Type()),
		}

		if hook(req) == Allow {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
	})
	go router.Run()

	s.router = router
	return nil
}

func (s *rodSession) OnResponse(listener func(Response)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseListeners = append(s.responseListeners, listener)
}

func (s *rodSession) OnSecurityStateChange(listener func(SecurityEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.securityListeners = append(s.securityListeners, listener)
}

func (s *rodSession) dispatchResponse(e *proto.NetworkResponseReceived) {
	if e.Response == nil {
		return
	}
	resp := toResponse(e.Response)

	s.mu.Lock()
	listeners := append([]func(Response){}, s.responseListeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(resp)
	}
}

func (s *rodSession) dispatchSecurity(e *proto.SecuritySecurityStateChanged) {
	event := SecurityEvent{State: string(e.SecurityState)}
	if raw, err := json.Marshal(e); err == nil {
		details := map[string]any{}
		if json.Unmarshal(raw, &details) == nil {
			event.Details = details
		}
	}

	s.mu.Lock()
	listeners := append([]func(SecurityEvent){}, s.securityListeners...)
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func (s *rodSession) Navigate(ctx context.Context, target string, strategy LoadStrategy) (*Response, error) {
	event, ok := lifecycleEvents[strategy]
	if !ok {
		return nil, errorwrapper.NewError("unknown load strategy %q", strategy)
	}

	page := s.page.Context(ctx)
	tracker := newDocumentTracker(s.page.FrameID, event)

	// Handlers only run inside wait(), after the tracker knows the started loader.
	wait := page.EachEvent(
		tracker.onResponse,
		tracker.onFrameNavigated,
		tracker.onLifecycle,
	)

	res, err := proto.PageNavigate{URL: target}.Call(page)
	if err != nil {
		return nil, s.navigationError(ctx, target, err)
	}
	if res.ErrorText != "" {
		return nil, &NavigationError{URL: target, Reason: res.ErrorText}
	}

	if res.LoaderID == "" {
		// Same-document navigation: the document and its response did not change.
		s.mu.Lock()
		last := s.lastMain
		s.mu.Unlock()
		if last == nil {
			return nil, &NavigationError{URL: target, Reason: "same-document navigation without a prior response"}
		}
		return last, nil
	}

	tracker.start(res.LoaderID)
	wait()

	if err := ctx.Err(); err != nil {
		return nil, s.navigationError(ctx, target, err)
	}
	main := tracker.mainResponse()
	if main == nil {
		return nil, &NavigationError{URL: target, Reason: "no response for main document"}
	}

	resp := toResponse(main)
	s.mu.Lock()
	s.lastMain = &resp
	s.mu.Unlock()
	return &resp, nil
}

func (s *rodSession) navigationError(ctx context.Context, target string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrNavigationTimeout
	}
	return errorwrapper.NewEngineError("navigate", target, err)
}

func (s *rodSession) Cookies(ctx context.Context) ([]Cookie, error) {
	raw, err := s.incognito.Context(ctx).GetCookies()
	if err != nil {
		return nil, errorwrapper.NewEngineError("read cookies", "", err)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "encode cookies")
	}
	cookies := []Cookie{}
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errorwrapper.WrapError(err, "decode cookies")
	}
	return cookies, nil
}

func (s *rodSession) Evaluate(ctx context.Context, script string) (string, error) {
	res, err := s.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           script,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return "", errorwrapper.NewEngineError("evaluate", "", err)
	}
	if res == nil || res.Value.Nil() {
		return "", nil
	}
	return res.Value.String(), nil
}

func (s *rodSession) Content(ctx context.Context) (string, error) {
	html, err := s.page.Context(ctx).HTML()
	if err != nil {
		return "", errorwrapper.NewEngineError("read content", "", err)
	}
	return html, nil
}

func (s *rodSession) Info(ctx context.Context) (PageInfo, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return PageInfo{}, errorwrapper.NewEngineError("read page info", "", err)
	}
	return PageInfo{URL: info.URL, Title: info.Title}, nil
}

// Close stops interception and event delivery, closes the page and disposes the context.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		router := s.router
		s.mu.Unlock()

		if router != nil {
			if err := router.Stop(); err != nil {
				s.logger.Debug().Err(err).Msg("Failed to stop request router")
			}
		}
		s.cancel()

		var errs []error
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := (proto.TargetDisposeBrowserContext{BrowserContextID: s.incognito.BrowserContextID}).Call(s.root); err != nil {
			errs = append(errs, err)
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func toResponse(r *proto.NetworkResponse) Response {
	headers := make(map[string]string, len(r.Headers))
	for name, value := range r.Headers {
		headers[strings.ToLower(name)] = value.String()
	}
	return Response{
		URL:           r.URL,
		Status:        r.Status,
		Headers:       headers,
		RemoteAddress: r.RemoteIPAddress,
	}
}

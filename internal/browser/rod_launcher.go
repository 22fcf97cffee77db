package browser

import (
	"context"
	"os"
	"strings"

	"github.com/aleister1102/pagecheck/internal/common/errorwrapper"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// RodLauncherConfig holds the Chrome process settings.
type RodLauncherConfig struct {
	ChromePath  string
	UserDataDir string // parent of the per-launch profile directories
	Headless    bool
	NoSandbox   bool
	ExtraFlags  []string
}

// profileDir creates a per-launch profile directory inside parent.
func profileDir(parent string) (string, error) {
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(parent, "audit-*")
}

// RodLauncher starts one Chrome process per Launch call.
type RodLauncher struct {
	config RodLauncherConfig
	logger zerolog.Logger
}

// NewRodLauncher creates a launcher for go-rod managed Chrome processes
func NewRodLauncher(cfg RodLauncherConfig, logger zerolog.Logger) *RodLauncher {
	return &RodLauncher{
		config: cfg,
		logger: logger.With().Str("component", "RodLauncher").Logger(),
	}
}

// Launch starts Chrome and connects to it over the DevTools protocol.
func (rl *RodLauncher) Launch(ctx context.Context) (Engine, error) {
	l := launcher.New().Context(ctx).Headless(rl.config.Headless)

	if rl.config.ChromePath != "" {
		l = l.Bin(rl.config.ChromePath)
	}

	if rl.config.UserDataDir != "" {
		// Chrome locks its profile, so concurrent audits each get a fresh directory under the
		// configured parent. Cleanup removes only that directory.
		dir, err := profileDir(rl.config.UserDataDir)
		if err != nil {
			return nil, errorwrapper.NewEngineError("create profile directory", "", err)
		}
		l = l.UserDataDir(dir)
	}

	l = l.
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync").
		Set("disable-background-networking")

	if rl.config.NoSandbox {
		l = l.NoSandbox(true)
	}

	for _, raw := range rl.config.ExtraFlags {
		name, value, hasValue := strings.Cut(strings.TrimLeft(raw, "-"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		_ = os.RemoveAll(l.Get(flags.UserDataDir))
		return nil, errorwrapper.NewEngineError("launch browser", "", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, errorwrapper.NewEngineError("connect browser", controlURL, err)
	}

	rl.logger.Debug().Int("pid", l.PID()).Msg("Browser launched")

	return &rodEngine{
		launcher: l,
		browser:  b,
		logger:   rl.logger,
	}, nil
}

type rodEngine struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   zerolog.Logger
}

// NewSession opens a page inside a fresh incognito browser context.
func (e *rodEngine) NewSession(ctx context.Context, opts SessionOptions) (Session, error) {
	incognito, err := e.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, errorwrapper.NewEngineError("create browser context", "", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = proto.TargetDisposeBrowserContext{BrowserContextID: incognito.BrowserContextID}.Call(e.browser)
		return nil, errorwrapper.NewEngineError("create page", "", err)
	}

	// Detach both from the setup context; the session owns their lifetime from here.
	page = page.Context(context.Background())
	incognito = incognito.Context(context.Background())

	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Viewport.Width,
			Height:            opts.Viewport.Height,
			DeviceScaleFactor: 1.0,
			Mobile:            false,
		}); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to set viewport")
		}
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: opts.UserAgent,
		}); err != nil {
			e.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	return newRodSession(page, incognito, e.browser, e.logger), nil
}

// Close shuts Chrome down and removes its temporary profile.
func (e *rodEngine) Close() error {
	err := e.browser.Close()
	if err != nil {
		e.launcher.Kill()
	}
	e.launcher.Cleanup()
	return err
}

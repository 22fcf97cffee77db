// Package gatekeeper decides, per outbound request of an audited page, whether the request
// may leave the sandbox.
package gatekeeper

import (
	"context"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/pagecheck/internal/browser"
	"github.com/aleister1102/pagecheck/internal/urlhandler"
	"github.com/rs/zerolog"
)

// Rule identifies which check produced a decision.
type Rule string

const (
	RulePolicyDisabled Rule = "policy_disabled"
	RulePrivateIP      Rule = "private_ip"
	RuleUnknownTLD     Rule = "unknown_tld"
	RuleDisallowedPort Rule = "disallowed_port"
	RulePrivateDNS     Rule = "private_dns"
	RuleAllowed        Rule = "allowed"
)

// Decision is the verdict for one destination.
type Decision struct {
	Allow bool
	Rule  Rule
}

// Resolver looks up the addresses of a hostname.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Recorder receives every decision, e.g. for metrics.
type Recorder interface {
	RecordDecision(allowed bool, rule string)
}

// Config controls the policy of one Gatekeeper.
type Config struct {
	EnforcePolicy    bool
	AllowedPorts     []string
	ResolveHostnames bool
	ResolveTimeout   time.Duration
}

// DefaultAllowedPorts are the only explicit ports a page may talk to.
var DefaultAllowedPorts = []string{"80", "443"}

// Gatekeeper is created per audit. Its only state is the DNS memo used when
// ResolveHostnames is on, which keeps decisions stable for the audit's lifetime.
type Gatekeeper struct {
	config   Config
	ports    map[string]struct{}
	resolver Resolver
	recorder Recorder
	logger   zerolog.Logger

	mu       sync.Mutex
	resolved map[string]bool
}

// New creates a Gatekeeper. resolver and recorder may be nil.
func New(cfg Config, resolver Resolver, recorder Recorder, logger zerolog.Logger) *Gatekeeper {
	allowed := cfg.AllowedPorts
	if len(allowed) == 0 {
		allowed = DefaultAllowedPorts
	}
	ports := make(map[string]struct{}, len(allowed))
	for _, p := range allowed {
		ports[p] = struct{}{}
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 5 * time.Second
	}

	return &Gatekeeper{
		config:   cfg,
		ports:    ports,
		resolver: resolver,
		recorder: recorder,
		logger:   logger.With().Str("component", "Gatekeeper").Logger(),
		resolved: make(map[string]bool),
	}
}

// Decide evaluates the destination of u.
func (g *Gatekeeper) Decide(u *url.URL) Decision {
	decision := g.decide(u)
	if g.recorder != nil {
		g.recorder.RecordDecision(decision.Allow, string(decision.Rule))
	}
	if !decision.Allow {
		g.logger.Debug().Str("request_url", u.String()).Str("rule", string(decision.Rule)).Msg("Blocked request")
	}
	return decision
}

func (g *Gatekeeper) decide(u *url.URL) Decision {
	if !g.config.EnforcePolicy {
		return Decision{Allow: true, Rule: RulePolicyDisabled}
	}
	if u == nil {
		return Decision{Allow: false, Rule: RuleUnknownTLD}
	}

	host := strings.ToLower(u.Hostname())

	if addr, isIP := urlhandler.ParseIPLiteral(host); isIP {
		if IsPrivateIP(addr) {
			return Decision{Allow: false, Rule: RulePrivateIP}
		}
	} else if !urlhandler.HasKnownTLD(host) {
		return Decision{Allow: false, Rule: RuleUnknownTLD}
	}

	if port := u.Port(); port != "" {
		if _, ok := g.ports[port]; !ok {
			return Decision{Allow: false, Rule: RuleDisallowedPort}
		}
	}

	if g.config.ResolveHostnames && g.resolver != nil && !urlhandler.IsIPLiteral(host) {
		if g.resolvesPrivate(host) {
			return Decision{Allow: false, Rule: RulePrivateDNS}
		}
	}

	return Decision{Allow: true, Rule: RuleAllowed}
}

// resolvesPrivate blocks a hostname when any of its addresses is private or the lookup fails.
func (g *Gatekeeper) resolvesPrivate(host string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if blocked, ok := g.resolved[host]; ok {
		return blocked
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.config.ResolveTimeout)
	defer cancel()

	blocked := false
	addrs, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil || len(addrs) == 0 {
		blocked = true
	}
	for _, addr := range addrs {
		if IsPrivateIP(addr) {
			blocked = true
			break
		}
	}

	g.resolved[host] = blocked
	return blocked
}

// Hook adapts the Gatekeeper to the session's interception hook.
func (g *Gatekeeper) Hook() browser.RequestHook {
	return func(req browser.Request) browser.Verdict {
		if g.Decide(req.URL).Allow {
			return browser.Allow
		}
		return browser.Block
	}
}

package auditor

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/pagecheck/internal/browser"
	"github.com/aleister1102/pagecheck/internal/common/contextutils"
	"github.com/rs/zerolog"
)

// errNoMainResponse is returned when the engine finished a navigation without a document response.
var errNoMainResponse = errors.New("navigation produced no document response")

// Navigator drives a session through an ordered list of load strategies. All attempts share one
// deadline; each attempt gets an equal share of the time left when it starts.
type Navigator struct {
	strategies []browser.LoadStrategy
	settle     time.Duration
	metrics    Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewNavigator creates a Navigator. An empty strategy list selects browser.DefaultStrategies.
func NewNavigator(strategies []browser.LoadStrategy, settle time.Duration, metrics Metrics, logger zerolog.Logger) *Navigator {
	if len(strategies) == 0 {
		strategies = browser.DefaultStrategies
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Navigator{
		strategies: append([]browser.LoadStrategy{}, strategies...),
		settle:     settle,
		metrics:    metrics,
		logger:     logger.With().Str("component", "Navigator").Logger(),
		now:        time.Now,
	}
}

// Navigate loads target, trying each strategy in turn until one completes within its share of
// timeout. It returns browser.ErrNavigationTimeout when every strategy timed out; any other
// engine error ends the attempt sequence immediately.
func (n *Navigator) Navigate(ctx context.Context, session browser.Session, target string, timeout time.Duration) (*browser.Response, error) {
	deadline := n.now().Add(timeout)

	for i, strategy := range n.strategies {
		if res := contextutils.CheckCancellationWithLog(ctx, n.logger, "navigate"); res.Cancelled {
			return nil, res.Error
		}

		budget := contextutils.ShareOfRemaining(n.now(), deadline, len(n.strategies)-i)
		if budget <= 0 {
			break
		}

		resp, err := n.attempt(ctx, session, target, strategy, budget)
		if err == nil {
			n.metrics.ObserveNavigation(string(strategy), "success")
			if resp == nil {
				return nil, errNoMainResponse
			}
			return resp, nil
		}

		// A cancelled parent is not a page timeout.
		if ctx.Err() != nil {
			n.metrics.ObserveNavigation(string(strategy), "cancelled")
			return nil, ctx.Err()
		}

		if !browser.IsTimeout(err) {
			n.metrics.ObserveNavigation(string(strategy), "error")
			return nil, err
		}

		n.metrics.ObserveNavigation(string(strategy), "timeout")
		n.logger.Info().
			Str("url", target).
			Str("strategy", string(strategy)).
			Dur("budget", budget).
			Msgf("Try of %s with %s timed out", target, strategy)
	}

	return nil, browser.ErrNavigationTimeout
}

func (n *Navigator) attempt(ctx context.Context, session browser.Session, target string, strategy browser.LoadStrategy, budget time.Duration) (*browser.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	return session.Navigate(attemptCtx, target, strategy)
}

// Settle holds the session for the settle window so late scripts can set cookies and storage.
// It only ends early when ctx does.
func (n *Navigator) Settle(ctx context.Context) {
	if err := contextutils.Sleep(ctx, n.settle); err != nil {
		n.logger.Debug().Err(err).Msg("Settle window cut short")
	}
}

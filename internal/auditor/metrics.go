package auditor

import (
	"time"

	"github.com/aleister1102/pagecheck/internal/gatekeeper"
)

// Metrics receives pipeline measurements. monitoring.Metrics implements it.
type Metrics interface {
	gatekeeper.Recorder
	ObserveAudit(outcome string, duration time.Duration)
	ObserveNavigation(strategy, outcome string)
}

type nopMetrics struct{}

func (nopMetrics) RecordDecision(bool, string)        {}
func (nopMetrics) ObserveAudit(string, time.Duration) {}
func (nopMetrics) ObserveNavigation(string, string)   {}

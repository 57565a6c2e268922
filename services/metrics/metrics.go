// Package metrics holds the prometheus collectors of the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes
const (
	OutcomeOpened      = "opened"
	OutcomeInvalidForm = "invalid_form"
	OutcomeInvalidCard = "invalid_card"
	OutcomeProcessing  = "processing"
	OutcomeSucceeded   = "succeeded"
	OutcomeCancelled   = "cancelled"
)

// Profile lookup results
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

var (
	CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnhub",
		Subsystem: "checkout",
		Name:      "events_total",
		Help:      "Checkout dialog events by outcome.",
	}, []string{"outcome"})

	ActiveCheckouts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "learnhub",
		Subsystem: "checkout",
		Name:      "active_sessions",
		Help:      "Checkout sessions currently open.",
	})

	ProfileLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "learnhub",
		Subsystem: "profile",
		Name:      "cache_lookups_total",
		Help:      "Display name cache lookups by result.",
	}, []string{"result"})

	ProfileLookupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "learnhub",
		Subsystem: "profile",
		Name:      "lookup_duration_seconds",
		Help:      "Latency of display name lookups against the profile store.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Register adds the collectors to reg. Registering twice is a no-op.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{CheckoutTotal, ActiveCheckouts, ProfileLookups, ProfileLookupDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Copyright (C) 2017 Librato, Inc. All rights reserved.

// Package metrics holds the Prometheus collectors of the probe runtime.
package metrics

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "probers"

// Init results.
const (
	ResultReady  = "ready"
	ResultFailed = "failed"
)

var (
	providerInitCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_init_total",
			Help:      "Number of provider initializations by outcome.",
		}, []string{"provider", "result"})
	probeFireCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_fires_total",
			Help:      "Number of fires of enabled probes.",
		}, []string{"provider", "probe"})
	eventsDroppedCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Number of probe events a backend failed to deliver.",
		}, []string{"backend"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{providerInitCount, probeFireCount, eventsDroppedCount}
}

// Register adds every collector to reg. Collectors already registered there
// are skipped.
func Register(reg prometheus.Registerer) error {
	var result error
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			result = multierror.Append(result, err)
		}
	}
	return result
}

// ProviderInitialized records the outcome of one provider initialization.
func ProviderInitialized(provider string, err error) {
	result := ResultReady
	if err != nil {
		result = ResultFailed
	}
	providerInitCount.WithLabelValues(provider, result).Inc()
}

// FireCounter returns the fire counter of one probe. Callers keep it so the
// fire path skips the label lookup.
func FireCounter(provider, probe string) prometheus.Counter {
	return probeFireCount.WithLabelValues(provider, probe)
}

// DroppedCounter returns the counter of events the named backend could not
// deliver.
func DroppedCounter(backend string) prometheus.Counter {
	return eventsDroppedCount.WithLabelValues(backend)
}

// Copyright (C) 2016 Librato, Inc. All rights reserved.

package probe

import (
	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/appoptics/probers-go/probe/internal/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	errInvalidLogLevel = errors.New("invalid log level")
)

// SetLogLevel changes the logging level of the probe runtime.
// Valid logging levels: DEBUG, INFO, WARN, ERROR
func SetLogLevel(level string) error {
	l, ok := log.ToLogLevel(level)
	if !ok {
		return errInvalidLogLevel
	}
	log.SetLevel(l)
	return nil
}

// GetLogLevel returns the current logging level of the probe runtime
func GetLogLevel() string {
	return log.Level().String()
}

// RegisterMetrics registers the runtime's Prometheus collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return metrics.Register(reg)
}

// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

import (
	"context"
	"sync"

	"github.com/appoptics/probers-go/probe/internal/backend"
	"github.com/pkg/errors"
)

var (
	errNotController = errors.New("tracer cannot toggle probes")

	tracerLock    sync.Mutex
	defaultTracer Tracer // built from the configuration on first use
)

func currentTracer() Tracer {
	tracerLock.Lock()
	defer tracerLock.Unlock()
	if defaultTracer == nil {
		defaultTracer = backend.FromConfig()
	}
	return defaultTracer
}

// SetTracer replaces the process default tracer and returns the previous one.
// Providers that are already initialized keep the tracer they were built
// with.
func SetTracer(t Tracer) Tracer {
	tracerLock.Lock()
	defer tracerLock.Unlock()
	old := defaultTracer
	defaultTracer = t
	return old
}

// CurrentTracer returns the process default tracer, building it from the
// configuration if none was set.
func CurrentTracer() Tracer {
	return currentTracer()
}

// SetEnabled switches every probe of the default tracer whose
// "provider:probe" name matches the glob pattern, and returns how many
// matched. It is how an in-process tool attaches to probes.
func SetEnabled(pattern string, on bool) (int, error) {
	c, ok := currentTracer().(backend.Controller)
	if !ok {
		return 0, errNotController
	}
	return c.SetEnabled(pattern, on)
}

// ListProbes returns the probes registered with the default tracer, if it
// can list them.
func ListProbes() []ProbeInfo {
	if l, ok := currentTracer().(interface{ Probes() []ProbeInfo }); ok {
		return l.Probes()
	}
	return nil
}

// Shutdown flushes and closes the default tracer. The call blocks until the
// tracer is flushed or ctx is done. Tracers without queued state return nil.
func Shutdown(ctx context.Context) error {
	if s, ok := currentTracer().(backend.Shutdowner); ok {
		return s.Shutdown(ctx)
	}
	return nil
}

// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

import (
	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/appoptics/probers-go/probe/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Handle is one registered probe of a Ready provider. It is immutable and
// safe for concurrent use.
type Handle struct {
	provider string
	name     string
	types    []WireType
	token    ProbeToken
	fires    prometheus.Counter
}

func newHandle(provider, name string, types []WireType, token ProbeToken) *Handle {
	return &Handle{
		provider: provider,
		name:     name,
		types:    types,
		token:    token,
		fires:    metrics.FireCounter(provider, name),
	}
}

// Provider returns the name of the provider the probe belongs to.
func (h *Handle) Provider() string { return h.provider }

// Name returns the probe name.
func (h *Handle) Name() string { return h.name }

// Types returns the declared wire types of the arguments.
func (h *Handle) Types() []WireType {
	return append([]WireType(nil), h.types...)
}

// Enabled reports whether a tool is attached to the probe right now.
func (h *Handle) Enabled() bool {
	return h.token.Enabled()
}

// Fire submits converted arguments to the backend. Call it only after Enabled
// returned true. It never fails; a panicking backend is logged and ignored.
func (h *Handle) Fire(args []WireValue) {
	defer h.recoverFire()
	h.fires.Inc()
	h.token.Fire(args)
}

func (h *Handle) recoverFire() {
	if r := recover(); r != nil {
		log.Errorf("Fire of probe %s:%s panicked: %v", h.provider, h.name, r)
	}
}

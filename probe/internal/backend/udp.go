// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"context"
	"net"

	"github.com/appoptics/probers-go/probe/internal/config"
	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/appoptics/probers-go/probe/internal/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

// UDPTracer sends each fire as one encoded event datagram.
type UDPTracer struct {
	*registry
	conn    *net.UDPConn
	enc     encoder
	closed  atomic.Bool
	dropped prometheus.Counter
}

// NewUDP dials addr and returns a tracer encoding events with the named
// encoding.
func NewUDP(addr, encoding string, patterns []string) (*UDPTracer, error) {
	enc, err := newEncoder(encoding)
	if err != nil {
		return nil, err
	}

	serverAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "resolving UDP collector")
	}
	conn, err := net.DialUDP("udp", nil, serverAddr)
	if err != nil {
		return nil, errors.Wrap(err, "dialing UDP collector")
	}

	t := &UDPTracer{conn: conn, enc: enc, dropped: metrics.DroppedCounter(config.BackendUDP)}
	t.registry = newRegistry(patterns, sinkFunc(t.emit))
	return t, nil
}

func (t *UDPTracer) emit(p *probe, args []WireValue) {
	if t.closed.Load() {
		t.dropped.Inc()
		return
	}
	buf, err := t.enc.encode(newEvent(p, args))
	if err == nil {
		_, err = t.conn.Write(buf)
	}
	if err != nil {
		log.Debugf("UDP tracer dropped %s: %v", p.fullName, err)
		t.dropped.Inc()
	}
}

// Shutdown closes the connection. Later fires are dropped.
func (t *UDPTracer) Shutdown(ctx context.Context) error {
	if !t.closed.CAS(false, true) {
		return ErrShutdown
	}
	return t.conn.Close()
}

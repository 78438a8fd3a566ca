// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

import "github.com/appoptics/probers-go/probe/internal/backend"

// Types shared with tracer backends. Implement Tracer to plug in a backend
// of your own. DefineProvider runs while the provider is initializing: it
// must not call Get, TryInit or a probe's Handle, Enabled or Fire on that
// same provider, which would wait on the initialization it is part of.
// Define* calls made from it are ignored with a warning.
type (
	WireType        = backend.WireType
	WireValue       = backend.WireValue
	Tracer          = backend.Tracer
	ProviderBuilder = backend.ProviderBuilder
	ProbeToken      = backend.ProbeToken
	ProbeInfo       = backend.ProbeInfo

	// RegisteredProvider is what a Tracer returns for a defined provider.
	RegisteredProvider = backend.Provider
)

// Built-in tracers. TestTracer records fires for assertions in tests.
type (
	NullTracer        = backend.NullTracer
	UDPTracer         = backend.UDPTracer
	CollectorTracer   = backend.CollectorTracer
	CollectorOptions  = backend.CollectorOptions
	OtelTracer        = backend.OtelTracer
	OpenTracingTracer = backend.OpenTracingTracer
	MultiTracer       = backend.MultiTracer
	TestTracer        = backend.TestTracer
	TestTracerOption  = backend.TestTracerOption
	RecordedFire      = backend.RecordedFire
)

// Wire types.
const (
	WireInt8    = backend.WireInt8
	WireInt16   = backend.WireInt16
	WireInt32   = backend.WireInt32
	WireInt64   = backend.WireInt64
	WireUint8   = backend.WireUint8
	WireUint16  = backend.WireUint16
	WireUint32  = backend.WireUint32
	WireUint64  = backend.WireUint64
	WireFloat64 = backend.WireFloat64
	WireBytes   = backend.WireBytes
)

// MaxProbeArgs is the most arguments a backend accepts for one probe.
const MaxProbeArgs = backend.MaxProbeArgs

// Errors a provider may fail with.
var (
	ErrInvalidName     = backend.ErrInvalidName
	ErrProviderExists  = backend.ErrProviderExists
	ErrProbeExists     = backend.ErrProbeExists
	ErrTooManyArgs     = backend.ErrTooManyArgs
	ErrInvalidWireType = backend.ErrInvalidWireType
	ErrInvalidPattern  = backend.ErrInvalidPattern
	ErrTracingDisabled = backend.ErrTracingDisabled
	ErrShutdown        = backend.ErrShutdown
	ErrShutdownTimeout = backend.ErrShutdownTimeout
)

// Tracer constructors.
var (
	NewNullTracer        = backend.NewNull
	NewUDPTracer         = backend.NewUDP
	NewCollectorTracer   = backend.NewCollector
	NewOtelTracer        = backend.NewOtel
	NewOpenTracingTracer = backend.NewOpenTracing
	NewMultiTracer       = backend.NewMulti
	NewTestTracer        = backend.NewTestTracer
	DisabledTracer       = backend.Disabled

	TestTracerEnabled   = backend.TestTracerEnabled
	TestTracerEnableAll = backend.TestTracerEnableAll
	TestTracerFailWith  = backend.TestTracerFailWith
	TestTracerPanic     = backend.TestTracerPanic
	TestTracerDelay     = backend.TestTracerDelay
)

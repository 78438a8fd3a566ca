// Copyright (C) 2017 Librato, Inc. All rights reserved.

// Package backend defines the contract between probe providers and the
// platform tracer that receives their fires, and holds the built-in tracers.
package backend

import (
	"context"
	"math"
	"strings"

	"github.com/appoptics/probers-go/probe/internal/config"
	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/pkg/errors"
)

// MaxProbeArgs is the most arguments a single probe may carry. It matches the
// USDT limit.
const MaxProbeArgs = 12

// WireType is the fixed low-level representation of one probe argument.
type WireType uint8

// The wire types a probe argument can be declared with.
const (
	WireInt8 WireType = iota + 1
	WireInt16
	WireInt32
	WireInt64
	WireUint8
	WireUint16
	WireUint32
	WireUint64
	WireFloat64
	WireBytes
)

var wireTypeNames = map[WireType]string{
	WireInt8:    "int8",
	WireInt16:   "int16",
	WireInt32:   "int32",
	WireInt64:   "int64",
	WireUint8:   "uint8",
	WireUint16:  "uint16",
	WireUint32:  "uint32",
	WireUint64:  "uint64",
	WireFloat64: "float64",
	WireBytes:   "bytes",
}

func (t WireType) String() string {
	if s, ok := wireTypeNames[t]; ok {
		return s
	}
	return "invalid"
}

// Valid reports whether t is one of the declared wire types.
func (t WireType) Valid() bool {
	_, ok := wireTypeNames[t]
	return ok
}

// Signed reports whether t is a signed integer type.
func (t WireType) Signed() bool {
	return t >= WireInt8 && t <= WireInt64
}

// Unsigned reports whether t is an unsigned integer type.
func (t WireType) Unsigned() bool {
	return t >= WireUint8 && t <= WireUint64
}

// WireValue is one converted probe argument. Integers are sign or zero
// extended into Bits, floats keep their IEEE-754 bits, and byte payloads set
// Data with Bits holding its length. Data is only valid while Fire runs.
type WireValue struct {
	Type WireType
	Bits uint64
	Data []byte
}

// Int returns the value as a signed integer.
func (v WireValue) Int() int64 { return int64(v.Bits) }

// Uint returns the value as an unsigned integer.
func (v WireValue) Uint() uint64 { return v.Bits }

// Float returns the value as a float64.
func (v WireValue) Float() float64 { return math.Float64frombits(v.Bits) }

// Value returns the natural Go value: int64, uint64, float64 or string. The
// string is a copy and outlives the fire.
func (v WireValue) Value() interface{} {
	switch {
	case v.Type.Signed():
		return v.Int()
	case v.Type.Unsigned():
		return v.Uint()
	case v.Type == WireFloat64:
		return v.Float()
	case v.Type == WireBytes:
		return string(v.Data)
	}
	return nil
}

// ProbeToken is the backend's handle to one registered probe.
type ProbeToken interface {
	// Enabled reports whether an external tool is currently attached.
	Enabled() bool
	// Fire submits one set of converted arguments. It never reports errors.
	Fire(args []WireValue)
}

// ProviderBuilder collects the probes of a provider being defined.
type ProviderBuilder interface {
	AddProbe(name string, types []WireType) (ProbeToken, error)
}

// Provider is a provider registered with a tracer.
type Provider interface {
	Name() string
}

// Tracer is the platform facility providers are registered with.
type Tracer interface {
	// DefineProvider registers a provider. The register callback adds each
	// probe through the builder; an error from it aborts the definition.
	// It must not block on the initialization of the provider it defines.
	DefineProvider(name string, register func(ProviderBuilder) error) (Provider, error)
}

// Controller is implemented by tracers that can toggle probes at run time.
type Controller interface {
	// SetEnabled switches every probe matching the "provider:probe" glob and
	// returns how many it touched.
	SetEnabled(pattern string, on bool) (int, error)
}

// Shutdowner is implemented by tracers that hold resources or queued events.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

var (
	ErrInvalidName     = errors.New("invalid provider or probe name")
	ErrProviderExists  = errors.New("provider already defined")
	ErrProbeExists     = errors.New("probe already defined")
	ErrTooManyArgs     = errors.New("too many probe arguments")
	ErrInvalidWireType = errors.New("invalid wire type")
	ErrInvalidPattern  = errors.New("invalid probe pattern")
	ErrTracingDisabled = errors.New("tracing is disabled")
	ErrShutdown        = errors.New("tracer is shut down")
	ErrShutdownTimeout = errors.New("tracer shutdown timeout")
	ErrUnsupportedKind = errors.New("unsupported backend")
)

// failedTracer refuses every provider. It stands in for a backend that could
// not be constructed, so the failure surfaces through the providers.
type failedTracer struct {
	err error
}

func (t *failedTracer) DefineProvider(name string, _ func(ProviderBuilder) error) (Provider, error) {
	return nil, errors.Wrapf(t.err, "provider %s", name)
}

// Failed returns a tracer on which every DefineProvider call fails with err.
func Failed(err error) Tracer {
	return &failedTracer{err: err}
}

// Disabled returns the tracer used when tracing is switched off.
func Disabled() Tracer {
	return Failed(ErrTracingDisabled)
}

// New builds the tracer named by kind, reading its settings from the global
// configuration. A construction failure is returned as a tracer that refuses
// every provider with the cause.
func New(kind string) Tracer {
	if config.GetDisabled() {
		log.Warning("Probes are disabled by configuration.")
		return Disabled()
	}

	if kinds := config.Backends(kind); len(kinds) > 1 {
		tracers := make([]Tracer, len(kinds))
		for i, k := range kinds {
			tracers[i] = New(k)
		}
		return NewMulti(tracers...)
	}

	patterns := config.GetEnabledProbes()
	var t Tracer
	var err error
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case config.BackendNone, "":
		t = NewNull(patterns)
	case config.BackendUDP:
		t, err = NewUDP(config.GetCollectorUDP(), config.GetEncoding(), patterns)
	case config.BackendCollector:
		t, err = NewCollector(CollectorOptions{
			Address:     config.GetCollector(),
			ServiceKey:  config.GetServiceKey(),
			TrustedPath: config.GetTrustedPath(),
			SkipVerify:  config.GetSkipVerify(),
			Queue:       config.GetQueue(),
		}, patterns)
	case config.BackendOtel:
		t = NewOtel(nil, patterns)
	case config.BackendOpenTracing:
		t = NewOpenTracing(nil, patterns)
	default:
		err = errors.Wrap(ErrUnsupportedKind, kind)
	}
	if err != nil {
		log.Errorf("Failed to initialize %s tracer: %v", kind, err)
		return Failed(err)
	}
	log.Infof("Probe tracer initialized: %s", kind)
	return t
}

// FromConfig builds the tracer selected by the global configuration.
func FromConfig() Tracer {
	return New(config.GetBackend())
}

// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// RecordedFire is one fire captured by a TestTracer. Byte payloads are
// copied, so it outlives the fire.
type RecordedFire struct {
	Provider string
	Probe    string
	Args     []WireValue
}

// Values returns the natural Go value of each argument.
func (f RecordedFire) Values() []interface{} {
	vals := make([]interface{}, len(f.Args))
	for i, a := range f.Args {
		vals[i] = a.Value()
	}
	return vals
}

// TestTracer records fires for making assertions in tests.
type TestTracer struct {
	*registry

	mu    sync.Mutex
	fires []RecordedFire

	defineCalls atomic.Int64
	err         error
	panicVal    interface{}
	delay       time.Duration
	patterns    []string
}

// TestTracerOption values may be passed to NewTestTracer.
type TestTracerOption func(*TestTracer)

// TestTracerEnabled makes probes matching the patterns start enabled.
func TestTracerEnabled(patterns ...string) TestTracerOption {
	return func(t *TestTracer) { t.patterns = append(t.patterns, patterns...) }
}

// TestTracerEnableAll makes every probe start enabled.
func TestTracerEnableAll() TestTracerOption {
	return TestTracerEnabled("*")
}

// TestTracerFailWith makes every DefineProvider call fail with err.
func TestTracerFailWith(err error) TestTracerOption {
	return func(t *TestTracer) { t.err = err }
}

// TestTracerPanic makes DefineProvider panic with v.
func TestTracerPanic(v interface{}) TestTracerOption {
	return func(t *TestTracer) { t.panicVal = v }
}

// TestTracerDelay makes DefineProvider sleep for d first.
func TestTracerDelay(d time.Duration) TestTracerOption {
	return func(t *TestTracer) { t.delay = d }
}

// NewTestTracer returns a TestTracer. Probes start disabled unless an option
// says otherwise.
func NewTestTracer(opts ...TestTracerOption) *TestTracer {
	t := &TestTracer{}
	for _, opt := range opts {
		opt(t)
	}
	t.registry = newRegistry(t.patterns, sinkFunc(t.record))
	return t
}

// DefineProvider counts the call and then behaves as configured.
func (t *TestTracer) DefineProvider(name string, register func(ProviderBuilder) error) (Provider, error) {
	t.defineCalls.Inc()
	if t.delay > 0 {
		time.Sleep(t.delay)
	}
	if t.panicVal != nil {
		panic(t.panicVal)
	}
	if t.err != nil {
		return nil, t.err
	}
	return t.registry.DefineProvider(name, register)
}

// DefineCalls returns how many times DefineProvider was called.
func (t *TestTracer) DefineCalls() int {
	return int(t.defineCalls.Load())
}

func (t *TestTracer) record(p *probe, args []WireValue) {
	owned := make([]WireValue, len(args))
	for i, a := range args {
		owned[i] = a
		if a.Data != nil {
			owned[i].Data = append([]byte(nil), a.Data...)
		}
	}

	t.mu.Lock()
	t.fires = append(t.fires, RecordedFire{Provider: p.provider, Probe: p.name, Args: owned})
	t.mu.Unlock()
}

// Fires returns every fire recorded so far.
func (t *TestTracer) Fires() []RecordedFire {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]RecordedFire(nil), t.fires...)
}

// FiresOf returns the fires of one probe.
func (t *TestTracer) FiresOf(provider, probe string) []RecordedFire {
	var ret []RecordedFire
	for _, f := range t.Fires() {
		if f.Provider == provider && f.Probe == probe {
			ret = append(ret, f)
		}
	}
	return ret
}

// Reset forgets the recorded fires.
func (t *TestTracer) Reset() {
	t.mu.Lock()
	t.fires = nil
	t.mu.Unlock()
}

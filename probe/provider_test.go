// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderLazyInit(t *testing.T) {
	tr := NewTestTracer()
	p := NewProvider("lazy", WithTracer(tr))
	Define1(p, "hit", Int32)

	assert.Equal(t, "lazy", p.Name())
	assert.Equal(t, Uninitialized, p.State())
	assert.Nil(t, p.GetInitError())
	assert.Equal(t, Uninitialized, p.State(), "GetInitError must not initialize")
	assert.Zero(t, tr.DefineCalls())

	probes := p.Get()
	require.NotNil(t, probes)
	assert.Equal(t, Ready, p.State())
	assert.Equal(t, "lazy", probes.Provider())
	assert.Equal(t, 1, probes.Len())
	assert.Equal(t, "hit", probes.At(0).Name())
	assert.Equal(t, "lazy", probes.At(0).Provider())
	assert.Equal(t, []WireType{WireInt32}, probes.At(0).Types())
	assert.Same(t, probes.At(0), probes.Lookup("hit"))
	assert.Nil(t, probes.Lookup("miss"))
	assert.Len(t, probes.Handles(), 1)

	// idempotent
	assert.Same(t, probes, p.Get())
	assert.NoError(t, p.TryInit())
	assert.Equal(t, 1, tr.DefineCalls())
}

func TestProviderConcurrentInit(t *testing.T) {
	tr := NewTestTracer(TestTracerDelay(20 * time.Millisecond))
	p := NewProvider("converge", WithTracer(tr))
	Define0(p, "a")
	Define1(p, "b", String)

	const n = 32
	results := make([]*Probes, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = p.Get()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, tr.DefineCalls())
	require.NotNil(t, results[0])
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestProviderFailureIsPermanent(t *testing.T) {
	cause := errors.New("no tracing here")
	tr := NewTestTracer(TestTracerFailWith(cause))
	p := NewProvider("broken", WithTracer(tr))
	pr := Define1(p, "x", Int64)

	assert.Nil(t, p.GetInitError())
	assert.Zero(t, tr.DefineCalls())

	err := p.TryInit()
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, Failed, p.State())
	assert.Nil(t, p.Get())
	assert.Equal(t, err, p.GetInitError())
	assert.Equal(t, err, p.TryInit())

	// fires and accessors are no-ops
	assert.Nil(t, pr.Handle())
	assert.False(t, pr.Enabled())
	pr.Fire(1)
	assert.Empty(t, tr.Fires())
	assert.Equal(t, 1, tr.DefineCalls())
}

func TestProviderTracerPanic(t *testing.T) {
	tr := NewTestTracer(TestTracerPanic("boom"))
	p := NewProvider("panicky", WithTracer(tr))
	Define0(p, "x")

	err := p.TryInit()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTracerPanic))
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, Failed, p.State())
}

func TestProviderIsolation(t *testing.T) {
	bad := NewTestTracer(TestTracerFailWith(ErrTracingDisabled))
	good := NewTestTracer(TestTracerEnableAll())

	p1 := NewProvider("iso_bad", WithTracer(bad))
	p2 := NewProvider("iso_good", WithTracer(good))
	pr1 := Define1(p1, "x", Int32)
	pr2 := Define1(p2, "x", Int32)

	assert.Error(t, p1.TryInit())
	assert.NoError(t, p2.TryInit())

	pr1.Fire(1)
	pr2.Fire(2)
	require.Len(t, good.Fires(), 1)
	assert.Equal(t, []interface{}{int64(2)}, good.Fires()[0].Values())
}

func TestProviderDuplicateProbe(t *testing.T) {
	tr := NewTestTracer()
	p := NewProvider("dupes", WithTracer(tr))
	Define0(p, "same")
	Define1(p, "same", Int8)

	err := p.TryInit()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProbeExists))
	assert.Empty(t, tr.Probes(), "a failed provider leaves nothing registered")
}

func TestProviderInvalidNames(t *testing.T) {
	tr := NewTestTracer()
	err := NewProvider("bad:name", WithTracer(tr)).TryInit()
	assert.True(t, errors.Is(err, ErrInvalidName))

	p := NewProvider("badprobe", WithTracer(tr))
	Define0(p, "a.b")
	assert.True(t, errors.Is(p.TryInit(), ErrInvalidName))
}

func TestProviderTooManyArgs(t *testing.T) {
	tr := NewTestTracer()
	p := NewProvider("wide", WithTracer(tr))
	d := p.define("many", make([]WireType, MaxProbeArgs+1)...)
	assert.Equal(t, 0, d.index)
	assert.True(t, errors.Is(p.TryInit(), ErrTooManyArgs))
}

func TestProviderDefineAfterInit(t *testing.T) {
	tr := NewTestTracer(TestTracerEnableAll())
	p := NewProvider("late", WithTracer(tr))
	early := Define0(p, "early")
	require.NoError(t, p.TryInit())

	late := Define0(p, "late")
	assert.Nil(t, late.Handle())
	assert.False(t, late.Enabled())
	late.Fire()
	early.Fire()
	assert.Len(t, tr.Fires(), 1)
	assert.Equal(t, 1, p.Get().Len())
}

// defineDuringInit is a tracer that declares one more probe on the provider
// it is defining.
type defineDuringInit struct {
	Tracer
	p    *Provider
	late *Probe0
}

func (d *defineDuringInit) DefineProvider(name string, register func(ProviderBuilder) error) (RegisteredProvider, error) {
	d.late = Define0(d.p, "from_tracer")
	return d.Tracer.DefineProvider(name, register)
}

func TestProviderDefineDuringInit(t *testing.T) {
	tr := NewTestTracer(TestTracerEnableAll())
	p := NewProvider("reentrant")
	d := &defineDuringInit{Tracer: tr, p: p}
	p.tracer = d
	Define0(p, "declared")

	done := make(chan error, 1)
	go func() { done <- p.TryInit() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("initialization deadlocked")
	}

	require.NotNil(t, d.late)
	assert.Nil(t, d.late.Handle())
	assert.Equal(t, 1, p.Get().Len())
	assert.NotNil(t, p.Get().Lookup("declared"))
}

func TestProviderEmpty(t *testing.T) {
	tr := NewTestTracer()
	p := NewProvider("empty", WithTracer(tr))
	probes := p.Get()
	require.NotNil(t, probes)
	assert.Zero(t, probes.Len())
}

func TestProviderDuplicateProviderName(t *testing.T) {
	tr := NewTestTracer()
	require.NoError(t, NewProvider("twice", WithTracer(tr)).TryInit())
	err := NewProvider("twice", WithTracer(tr)).TryInit()
	assert.True(t, errors.Is(err, ErrProviderExists))
}

func TestInitState(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "initializing", Initializing.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", InitState(9).String())
}

func TestProviderInitMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))

	NewProvider("metric_ok", WithTracer(NewTestTracer())).TryInit()
	NewProvider("metric_bad", WithTracer(NewTestTracer(TestTracerFailWith(ErrTracingDisabled)))).TryInit()

	assert.Equal(t, 1.0, gatherCounter(t, reg, "probers_provider_init_total",
		map[string]string{"provider": "metric_ok", "result": "ready"}))
	assert.Equal(t, 1.0, gatherCounter(t, reg, "probers_provider_init_total",
		map[string]string{"provider": "metric_bad", "result": "failed"}))
}

// gatherCounter returns the value of the counter with exactly the given
// labels, or -1 when there is none.
func gatherCounter(t *testing.T, reg prometheus.Gatherer, name string, labels map[string]string) float64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) != len(labels) {
				continue
			}
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return -1
}

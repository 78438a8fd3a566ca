// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"context"
	"math"
	"testing"

	"github.com/appoptics/probers-go/probe/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireType(t *testing.T) {
	assert.Equal(t, "int8", WireInt8.String())
	assert.Equal(t, "bytes", WireBytes.String())
	assert.Equal(t, "invalid", WireType(0).String())
	assert.Equal(t, "invalid", WireType(99).String())

	for _, wt := range []WireType{WireInt8, WireInt16, WireInt32, WireInt64} {
		assert.True(t, wt.Signed(), wt.String())
		assert.False(t, wt.Unsigned(), wt.String())
	}
	for _, wt := range []WireType{WireUint8, WireUint16, WireUint32, WireUint64} {
		assert.True(t, wt.Unsigned(), wt.String())
		assert.False(t, wt.Signed(), wt.String())
	}
	assert.False(t, WireFloat64.Signed() || WireFloat64.Unsigned())
	assert.False(t, WireType(0).Valid())
	assert.True(t, WireFloat64.Valid())
}

func TestWireValue(t *testing.T) {
	neg := WireValue{Type: WireInt64, Bits: uint64(math.MaxUint64)}
	assert.Equal(t, int64(-1), neg.Int())
	assert.Equal(t, int64(-1), neg.Value())

	u := WireValue{Type: WireUint64, Bits: math.MaxUint64}
	assert.Equal(t, uint64(math.MaxUint64), u.Value())

	f := WireValue{Type: WireFloat64, Bits: math.Float64bits(-0.5)}
	assert.Equal(t, -0.5, f.Float())
	assert.Equal(t, -0.5, f.Value())

	data := []byte("abc")
	b := WireValue{Type: WireBytes, Bits: 3, Data: data}
	v := b.Value()
	data[0] = 'x'
	assert.Equal(t, "abc", v)

	assert.Nil(t, WireValue{}.Value())
}

func TestFailedTracer(t *testing.T) {
	boom := errors.New("boom")
	_, err := Failed(boom).DefineProvider("p", nil)
	assert.Equal(t, boom, errors.Cause(err))
	assert.Contains(t, err.Error(), "provider p")

	_, err = Disabled().DefineProvider("p", nil)
	assert.Equal(t, ErrTracingDisabled, errors.Cause(err))
}

func TestNew(t *testing.T) {
	defer config.Load()

	require.NoError(t, config.Load())
	_, ok := New(config.BackendNone).(*NullTracer)
	assert.True(t, ok)
	_, ok = New("").(*NullTracer)
	assert.True(t, ok)
	_, ok = FromConfig().(*NullTracer)
	assert.True(t, ok)

	_, ok = New(" OTEL ").(*OtelTracer)
	assert.True(t, ok)
	_, ok = New(config.BackendOpenTracing).(*OpenTracingTracer)
	assert.True(t, ok)

	udp := New(config.BackendUDP)
	_, ok = udp.(*UDPTracer)
	assert.True(t, ok)
	require.NoError(t, udp.(Shutdowner).Shutdown(context.Background()))

	multi, ok := New("none, otel").(*MultiTracer)
	require.True(t, ok)
	require.Len(t, multi.Tracers, 2)
	assert.IsType(t, &NullTracer{}, multi.Tracers[0])
	assert.IsType(t, &OtelTracer{}, multi.Tracers[1])

	_, err := New("dtrace").DefineProvider("p", nil)
	assert.Equal(t, ErrUnsupportedKind, errors.Cause(err))

	// the collector needs a valid service key
	_, err = New(config.BackendCollector).DefineProvider("p", nil)
	assert.Equal(t, errInvalidServiceKey, errors.Cause(err))
}

func TestNewDisabled(t *testing.T) {
	defer config.Load()

	require.NoError(t, config.Load(config.WithDisabled(true), config.WithBackend(config.BackendUDP)))
	_, err := FromConfig().DefineProvider("p", nil)
	assert.Equal(t, ErrTracingDisabled, errors.Cause(err))
}

func TestNewEnabledProbes(t *testing.T) {
	defer config.Load()

	require.NoError(t, config.Load(config.WithEnabledProbes("cfg:on")))
	tr := FromConfig()
	toks := addProbes(t, tr, "cfg", map[string][]WireType{"on": nil, "off": nil})
	assert.True(t, toks["on"].Enabled())
	assert.False(t, toks["off"].Enabled())
}

// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"testing"

	bt "github.com/opentracing/basictracer-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTracingTracer(t *testing.T) {
	rec := bt.NewInMemoryRecorder()
	tracer := bt.NewWithOptions(bt.Options{
		Recorder:     rec,
		ShouldSample: func(traceID uint64) bool { return true }, // always sample
	})
	tr := NewOpenTracing(tracer, nil)

	toks := addProbes(t, tr, "queue", map[string][]WireType{"push": {WireUint8, WireBytes}})
	assert.False(t, toks["push"].Enabled())
	n, err := tr.SetEnabled("queue:push", true)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	toks["push"].Fire([]WireValue{
		{Type: WireUint8, Bits: 1},
		{Type: WireBytes, Bits: 4, Data: []byte("jobs")},
	})

	spans := rec.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "queue:push", span.Operation)
	assert.Zero(t, span.Duration)
	assert.Equal(t, componentName, span.Tags[string(ext.Component)])
	assert.Equal(t, "queue", span.Tags[AttrProvider])
	assert.Equal(t, "push", span.Tags[AttrProbe])
	assert.Equal(t, uint64(1), span.Tags["probe.arg0"])
	assert.Equal(t, "jobs", span.Tags["probe.arg1"])
}

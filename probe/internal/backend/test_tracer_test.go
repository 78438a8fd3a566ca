// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestTracerRecords(t *testing.T) {
	tr := NewTestTracer(TestTracerEnabled("rec:a"))
	toks := addProbes(t, tr, "rec", map[string][]WireType{"a": {WireBytes}, "b": nil})
	assert.Equal(t, 1, tr.DefineCalls())
	assert.True(t, toks["a"].Enabled())
	assert.False(t, toks["b"].Enabled())

	data := []byte("one")
	toks["a"].Fire([]WireValue{{Type: WireBytes, Bits: 3, Data: data}})
	copy(data, "two")
	toks["b"].Fire(nil)

	fires := tr.FiresOf("rec", "a")
	require.Len(t, fires, 1)
	assert.Equal(t, []interface{}{"one"}, fires[0].Values())
	assert.Len(t, tr.Fires(), 2)

	tr.Reset()
	assert.Empty(t, tr.Fires())
}

func TestTestTracerFailures(t *testing.T) {
	boom := errors.New("boom")
	tr := NewTestTracer(TestTracerFailWith(boom))
	_, err := tr.DefineProvider("p", nil)
	assert.Equal(t, boom, err)
	assert.Equal(t, 1, tr.DefineCalls())

	tr = NewTestTracer(TestTracerPanic("kaboom"))
	assert.PanicsWithValue(t, "kaboom", func() { tr.DefineProvider("p", nil) })
	assert.Equal(t, 1, tr.DefineCalls())
}

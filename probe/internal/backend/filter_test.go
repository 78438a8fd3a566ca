// Copyright (C) 2019 Librato, Inc. All rights reserved.

package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeFilter(t *testing.T) {
	f := newProbeFilter([]string{"http:*", "db:query_[sd]*", "[invalid"})
	assert.Equal(t, []string{"http:*", "db:query_[sd]*"}, f.patterns)
	assert.Len(t, f.globs, 2)

	tests := map[string]bool{
		"http:request":     true,
		"http:response":    true,
		"db:query_start":   true,
		"db:query_done":    true,
		"db:query_failed":  false,
		"grpc:call":        false,
		"httpx:request":    false,
		"db:query_start_x": true,
		"http:v2/request":  true,
		"db:query_s/x":     true,
	}
	for name, want := range tests {
		assert.Equal(t, want, f.Match(name), name)
		// the second lookup is served from the cache
		assert.Equal(t, want, f.Match(name), name)
	}
}

func TestFilterMatchAll(t *testing.T) {
	f := newProbeFilter([]string{"*"})
	assert.True(t, f.Match("p:a/b"))
	assert.True(t, f.Match("p:plain"))
}

func TestProbeFilterEmpty(t *testing.T) {
	f := newProbeFilter(nil)
	assert.False(t, f.Match("http:request"))
	assert.Equal(t, int64(0), f.cache.EntryCount())
}

func TestCache(t *testing.T) {
	f := newProbeFilter([]string{"*"})
	c := f.cache

	_, err := c.GetProbeEnabled("a:b")
	assert.Error(t, err)

	c.SetProbeEnabled("a:b", true)
	on, err := c.GetProbeEnabled("a:b")
	assert.NoError(t, err)
	assert.True(t, on)

	c.SetProbeEnabled("a:b", false)
	on, err = c.GetProbeEnabled("a:b")
	assert.NoError(t, err)
	assert.False(t, on)
}

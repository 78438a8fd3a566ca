// Copyright (C) 2019 Librato, Inc. All rights reserved.

package backend

import (
	"strings"

	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/coocood/freecache"
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// Cache stores the enablement decision of each probe name seen so far.
type Cache struct{ *freecache.Cache }

// Decisions in cache
const (
	probeEnabled  = "t"
	probeDisabled = "f"
)

// SetProbeEnabled records the decision for a probe name.
func (c *Cache) SetProbeEnabled(name string, on bool) {
	val := probeEnabled
	if !on {
		val = probeDisabled
	}
	_ = c.Set([]byte(name), []byte(val), 0)
}

// GetProbeEnabled returns the cached decision of a probe name.
func (c *Cache) GetProbeEnabled(name string) (bool, error) {
	v, err := c.Get([]byte(name))
	if err != nil {
		return false, err
	}
	return string(v) == probeEnabled, nil
}

// compilePattern compiles a "provider:probe" glob. Wildcards match any run of
// characters, including ':' and '/'.
func compilePattern(p string) (glob.Glob, error) {
	if p == "" {
		return nil, errors.Wrap(ErrInvalidPattern, "empty pattern")
	}
	g, err := glob.Compile(p)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPattern, "%q: %v", p, err)
	}
	return g, nil
}

// probeFilter decides whether a newly registered probe starts enabled.
type probeFilter struct {
	cache    *Cache
	patterns []string
	globs    []glob.Glob
}

func newProbeFilter(patterns []string) *probeFilter {
	f := &probeFilter{
		cache: &Cache{freecache.NewCache(512 * 1024)},
	}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := compilePattern(p)
		if err != nil {
			log.Warningf("Ignoring bad probe pattern: %v", err)
			continue
		}
		f.patterns = append(f.patterns, p)
		f.globs = append(f.globs, g)
	}
	return f
}

// Match checks whether the full "provider:probe" name is enabled at start.
func (f *probeFilter) Match(name string) bool {
	if len(f.patterns) == 0 {
		return false
	}

	on, err := f.cache.GetProbeEnabled(name)
	if err == nil {
		return on
	}

	on = f.match(name)
	f.cache.SetProbeEnabled(name, on)
	return on
}

func (f *probeFilter) match(name string) bool {
	for _, g := range f.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

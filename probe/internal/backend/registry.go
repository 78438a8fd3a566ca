// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"sort"
	"strings"
	"sync"

	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// ProbeInfo describes one registered probe.
type ProbeInfo struct {
	Provider string
	Name     string
	Types    []WireType
	Enabled  bool
}

// sink receives the fires of every probe of a registry.
type sink interface {
	emit(p *probe, args []WireValue)
}

type sinkFunc func(p *probe, args []WireValue)

func (f sinkFunc) emit(p *probe, args []WireValue) { f(p, args) }

// registry is the provider and probe table shared by the built-in tracers. It
// implements Tracer and Controller; each tracer only supplies the sink.
type registry struct {
	mu        sync.RWMutex
	providers map[string]*provider // nil value: definition in progress
	filter    *probeFilter
	sink      sink
}

func newRegistry(patterns []string, s sink) *registry {
	return &registry{
		providers: make(map[string]*provider),
		filter:    newProbeFilter(patterns),
		sink:      s,
	}
}

type provider struct {
	name   string
	probes []*probe
}

func (p *provider) Name() string { return p.name }

// probe is the ProbeToken of the built-in tracers. Its enabled flag is the
// semaphore an attached tool raises.
type probe struct {
	provider string
	name     string
	fullName string
	types    []WireType
	enabled  atomic.Bool
	sink     sink
}

func (p *probe) Enabled() bool { return p.enabled.Load() }

func (p *probe) Fire(args []WireValue) {
	if len(args) != len(p.types) {
		log.Debugf("Dropping fire of %s: got %d args, want %d", p.fullName, len(args), len(p.types))
		return
	}
	p.sink.emit(p, args)
}

// ValidName reports whether s can name a provider or a probe.
func ValidName(s string) bool {
	return s != "" && !strings.ContainsAny(s, ":.")
}

type builder struct {
	r    *registry
	prov *provider
	seen map[string]struct{}
}

func (b *builder) AddProbe(name string, types []WireType) (ProbeToken, error) {
	if !ValidName(name) {
		return nil, errors.Wrapf(ErrInvalidName, "probe %q", name)
	}
	if len(types) > MaxProbeArgs {
		return nil, errors.Wrapf(ErrTooManyArgs, "probe %s has %d", name, len(types))
	}
	for i, t := range types {
		if !t.Valid() {
			return nil, errors.Wrapf(ErrInvalidWireType, "probe %s arg %d", name, i)
		}
	}
	if _, ok := b.seen[name]; ok {
		return nil, errors.Wrapf(ErrProbeExists, "probe %s", name)
	}
	b.seen[name] = struct{}{}

	p := &probe{
		provider: b.prov.name,
		name:     name,
		fullName: b.prov.name + ":" + name,
		types:    append([]WireType(nil), types...),
		sink:     b.r.sink,
	}
	p.enabled.Store(b.r.filter.Match(p.fullName))
	b.prov.probes = append(b.prov.probes, p)
	return p, nil
}

func (r *registry) DefineProvider(name string, register func(ProviderBuilder) error) (Provider, error) {
	if !ValidName(name) {
		return nil, errors.Wrapf(ErrInvalidName, "provider %q", name)
	}

	r.mu.Lock()
	if _, ok := r.providers[name]; ok {
		r.mu.Unlock()
		return nil, errors.Wrapf(ErrProviderExists, "provider %s", name)
	}
	r.providers[name] = nil
	r.mu.Unlock()

	prov := &provider{name: name}
	b := &builder{r: r, prov: prov, seen: make(map[string]struct{})}
	var err error
	if register != nil {
		err = register(b)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		delete(r.providers, name)
		return nil, err
	}
	r.providers[name] = prov
	log.Debugf("Provider %s defined with %d probes", name, len(prov.probes))
	return prov, nil
}

// SetEnabled toggles every probe whose "provider:probe" name matches the
// glob pattern.
func (r *registry) SetEnabled(pattern string, on bool) (int, error) {
	g, err := compilePattern(pattern)
	if err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, prov := range r.providers {
		if prov == nil {
			continue
		}
		for _, p := range prov.probes {
			if g.Match(p.fullName) {
				p.enabled.Store(on)
				n++
			}
		}
	}
	return n, nil
}

// Probes lists every registered probe, sorted by provider then definition
// order.
func (r *registry) Probes() []ProbeInfo {
	r.mu.RLock()
	names := make([]string, 0, len(r.providers))
	for name, prov := range r.providers {
		if prov != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var infos []ProbeInfo
	for _, name := range names {
		for _, p := range r.providers[name].probes {
			infos = append(infos, ProbeInfo{
				Provider: p.provider,
				Name:     p.name,
				Types:    p.types,
				Enabled:  p.Enabled(),
			})
		}
	}
	r.mu.RUnlock()
	return infos
}

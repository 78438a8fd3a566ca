// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

import (
	"sync"

	"github.com/appoptics/probers-go/probe/internal/log"
	"github.com/appoptics/probers-go/probe/internal/metrics"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// InitState is the initialization state of a Provider.
type InitState uint32

// Provider states. Ready and Failed are terminal.
const (
	Uninitialized InitState = iota
	Initializing
	Ready
	Failed
)

var initStateNames = [...]string{"uninitialized", "initializing", "ready", "failed"}

func (s InitState) String() string {
	if int(s) < len(initStateNames) {
		return initStateNames[s]
	}
	return "unknown"
}

// ErrTracerPanic is the cause recorded when the tracer panics while the
// provider is being built.
var ErrTracerPanic = errors.New("tracer panicked")

// Provider is a named group of probes. It registers them with its tracer
// once, on first use, and remembers the outcome for the life of the process.
type Provider struct {
	name   string
	tracer Tracer

	mu     sync.Mutex // guards construction
	state  atomic.Uint32
	defs   []*probeDef
	probes *Probes
	err    error
}

// ProviderOption values may be passed to NewProvider.
type ProviderOption func(*Provider)

// WithTracer pins the provider to t instead of the process default tracer.
func WithTracer(t Tracer) ProviderOption {
	return func(p *Provider) { p.tracer = t }
}

// NewProvider declares a provider. Nothing is registered until the first
// call to Get, TryInit or a probe accessor.
func NewProvider(name string, opts ...ProviderOption) *Provider {
	p := &Provider{name: name}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.name }

// State returns the current initialization state without changing it.
func (p *Provider) State() InitState {
	return InitState(p.state.Load())
}

// Get returns the probes of the provider, initializing it on the first call.
// It returns nil when initialization failed. Concurrent first callers block
// until the single initialization finishes and then see the same result.
func (p *Provider) Get() *Probes {
	switch p.State() {
	case Ready:
		return p.probes
	case Failed:
		return nil
	}
	return p.init()
}

// GetInitError returns the cached initialization error. It never starts
// initialization and returns nil unless it was attempted and failed.
func (p *Provider) GetInitError() error {
	if p.State() == Failed {
		return p.err
	}
	return nil
}

// TryInit initializes the provider if needed and returns the error it
// failed with, if any.
func (p *Provider) TryInit() error {
	if p.Get() != nil {
		return nil
	}
	return p.GetInitError()
}

func (p *Provider) define(name string, types ...WireType) *probeDef {
	d := &probeDef{provider: p, name: name, types: types, index: -1}
	// checked before locking: a tracer may call Define* while init holds mu
	if p.State() != Uninitialized {
		p.lateDefine(name)
		return d
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.State() != Uninitialized {
		p.lateDefine(name)
		return d
	}
	d.index = len(p.defs)
	p.defs = append(p.defs, d)
	return d
}

func (p *Provider) lateDefine(name string) {
	log.Warningf("Probe %s:%s is defined after the provider was initialized and will never fire.",
		p.name, name)
}

func (p *Provider) init() *Probes {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.State() {
	case Ready:
		return p.probes
	case Failed:
		return nil
	}

	p.state.Store(uint32(Initializing))
	probes, err := p.build()
	metrics.ProviderInitialized(p.name, err)
	if err != nil {
		p.err = err
		p.state.Store(uint32(Failed))
		log.Warningf("Provider %s failed to initialize: %v", p.name, err)
		return nil
	}

	p.probes = probes
	p.state.Store(uint32(Ready))
	log.Debugf("Provider %s is ready with %d probes", p.name, probes.Len())
	return probes
}

// build registers the provider and all its probes with the tracer.
func (p *Provider) build() (probes *Probes, err error) {
	defer func() {
		if r := recover(); r != nil {
			probes = nil
			err = errors.Wrapf(ErrTracerPanic, "provider %s: %v", p.name, r)
		}
	}()

	tracer := p.tracer
	if tracer == nil {
		tracer = currentTracer()
	}

	tokens := make([]ProbeToken, len(p.defs))
	_, err = tracer.DefineProvider(p.name, func(b ProviderBuilder) error {
		var result *multierror.Error
		for i, d := range p.defs {
			tok, err := b.AddProbe(d.name, d.types)
			if err == nil && tok == nil {
				err = errors.Errorf("probe %s: tracer returned no token", d.name)
			}
			if err != nil {
				result = multierror.Append(result, err)
				continue
			}
			tokens[i] = tok
		}
		return result.ErrorOrNil()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "provider %s", p.name)
	}

	handles := make([]*Handle, len(p.defs))
	for i, d := range p.defs {
		handles[i] = newHandle(p.name, d.name, d.types, tokens[i])
	}
	return newProbes(p.name, handles), nil
}

// Probes is the immutable probe collection of a Ready provider.
type Probes struct {
	provider string
	handles  []*Handle
	byName   map[string]*Handle
}

func newProbes(provider string, handles []*Handle) *Probes {
	ps := &Probes{
		provider: provider,
		handles:  handles,
		byName:   make(map[string]*Handle, len(handles)),
	}
	for _, h := range handles {
		ps.byName[h.name] = h
	}
	return ps
}

// Provider returns the provider name.
func (ps *Probes) Provider() string { return ps.provider }

// Len returns the number of probes.
func (ps *Probes) Len() int { return len(ps.handles) }

// At returns the i-th probe in definition order.
func (ps *Probes) At(i int) *Handle { return ps.handles[i] }

// Lookup returns the probe with the given name, or nil.
func (ps *Probes) Lookup(name string) *Handle { return ps.byName[name] }

// Handles returns every probe in definition order.
func (ps *Probes) Handles() []*Handle {
	return append([]*Handle(nil), ps.handles...)
}

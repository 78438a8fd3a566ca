// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// MultiTracer multiplexes providers across several tracers. A probe is
// enabled when any tracer enabled it, and each fire reaches only the tracers
// that did.
type MultiTracer struct {
	Tracers []Tracer
}

// NewMulti returns a MultiTracer over tracers.
func NewMulti(tracers ...Tracer) *MultiTracer {
	return &MultiTracer{Tracers: tracers}
}

type multiProvider struct {
	name      string
	providers []Provider
}

func (p *multiProvider) Name() string { return p.name }

type multiProbe struct {
	tokens []ProbeToken
}

func (p *multiProbe) Enabled() bool {
	for _, tok := range p.tokens {
		if tok.Enabled() {
			return true
		}
	}
	return false
}

func (p *multiProbe) Fire(args []WireValue) {
	for _, tok := range p.tokens {
		if tok.Enabled() {
			tok.Fire(args)
		}
	}
}

type probeDecl struct {
	name  string
	types []WireType
	token *multiProbe
}

// recorder collects the probes of a provider so they can be replayed to
// every tracer.
type recorder struct {
	decls []probeDecl
}

func (r *recorder) AddProbe(name string, types []WireType) (ProbeToken, error) {
	tok := &multiProbe{}
	r.decls = append(r.decls, probeDecl{name: name, types: types, token: tok})
	return tok, nil
}

// DefineProvider defines the provider on every tracer in turn. It fails if
// any of them fails; the tracers that already accepted the provider keep it.
func (m *MultiTracer) DefineProvider(name string, register func(ProviderBuilder) error) (Provider, error) {
	rec := &recorder{}
	if register != nil {
		if err := register(rec); err != nil {
			return nil, err
		}
	}

	mp := &multiProvider{name: name}
	for _, t := range m.Tracers {
		prov, err := t.DefineProvider(name, func(b ProviderBuilder) error {
			var result *multierror.Error
			for _, d := range rec.decls {
				tok, err := b.AddProbe(d.name, d.types)
				if err != nil {
					result = multierror.Append(result, err)
					continue
				}
				d.token.tokens = append(d.token.tokens, tok)
			}
			return result.ErrorOrNil()
		})
		if err != nil {
			return nil, err
		}
		mp.providers = append(mp.providers, prov)
	}
	return mp, nil
}

// SetEnabled toggles the matching probes on every tracer that can. It
// returns the largest match count.
func (m *MultiTracer) SetEnabled(pattern string, on bool) (int, error) {
	var result *multierror.Error
	most := 0
	for _, t := range m.Tracers {
		c, ok := t.(Controller)
		if !ok {
			continue
		}
		n, err := c.SetEnabled(pattern, on)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if n > most {
			most = n
		}
	}
	return most, result.ErrorOrNil()
}

// Probes merges the probe lists of the tracers. A probe is reported enabled
// if any tracer enabled it.
func (m *MultiTracer) Probes() []ProbeInfo {
	var infos []ProbeInfo
	index := make(map[string]int)
	for _, t := range m.Tracers {
		l, ok := t.(interface{ Probes() []ProbeInfo })
		if !ok {
			continue
		}
		for _, info := range l.Probes() {
			key := info.Provider + ":" + info.Name
			if i, seen := index[key]; seen {
				infos[i].Enabled = infos[i].Enabled || info.Enabled
				continue
			}
			index[key] = len(infos)
			infos = append(infos, info)
		}
	}
	return infos
}

// Shutdown shuts every tracer down and returns their errors combined.
func (m *MultiTracer) Shutdown(ctx context.Context) error {
	var result *multierror.Error
	for _, t := range m.Tracers {
		if s, ok := t.(Shutdowner); ok {
			if err := s.Shutdown(ctx); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}

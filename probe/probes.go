// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

// probeDef is one probe declared on a provider. index is its position in the
// provider's probes, or -1 when it was declared too late to be registered.
type probeDef struct {
	provider *Provider
	name     string
	types    []WireType
	index    int
}

// handle initializes the provider if needed and returns the probe handle, or
// nil when the provider failed or the probe was never registered.
func (d *probeDef) handle() *Handle {
	probes := d.provider.Get()
	if probes == nil || d.index < 0 {
		return nil
	}
	return probes.At(d.index)
}

// live returns the handle only if the probe is enabled right now.
func (d *probeDef) live() *Handle {
	if h := d.handle(); h != nil && h.Enabled() {
		return h
	}
	return nil
}

// Probe0 is a probe without arguments.
type Probe0 struct {
	def *probeDef
}

// Define0 declares a probe without arguments on p.
func Define0(p *Provider, name string) *Probe0 {
	return &Probe0{def: p.define(name)}
}

// Handle returns the probe handle, or nil when the provider failed.
func (pr *Probe0) Handle() *Handle { return pr.def.handle() }

// Enabled reports whether a tool is attached to the probe.
func (pr *Probe0) Enabled() bool { return pr.def.live() != nil }

// Fire fires the probe if it is enabled.
func (pr *Probe0) Fire() {
	if h := pr.def.live(); h != nil {
		h.Fire(nil)
	}
}

// Probe1 is a probe with 1 argument.
type Probe1[A any] struct {
	def *probeDef
	ta  ArgType[A]
}

// Define1 declares a probe with 1 argument on p.
func Define1[A any](p *Provider, name string, ta ArgType[A]) *Probe1[A] {
	return &Probe1[A]{def: p.define(name, ta.WireType()), ta: ta}
}

// Handle returns the probe handle, or nil when the provider failed.
func (pr *Probe1[A]) Handle() *Handle { return pr.def.handle() }

// Enabled reports whether a tool is attached to the probe.
func (pr *Probe1[A]) Enabled() bool { return pr.def.live() != nil }

// Fire converts the arguments and fires the probe if it is enabled.
func (pr *Probe1[A]) Fire(a A) {
	if h := pr.def.live(); h != nil {
		pr.fire(h, a)
	}
}

// FireFunc fires the probe with the arguments returned by args. args is only
// called when the probe is enabled.
func (pr *Probe1[A]) FireFunc(args func() A) {
	if h := pr.def.live(); h != nil {
		defer h.recoverFire()
		a := args()
		pr.fire(h, a)
	}
}

func (pr *Probe1[A]) fire(h *Handle, a A) {
	defer h.recoverFire()
	h.Fire([]WireValue{
		Wrap(pr.ta, a).ToWire(),
	})
}

// Probe2 is a probe with 2 arguments.
type Probe2[A, B any] struct {
	def *probeDef
	ta  ArgType[A]
	tb  ArgType[B]
}

// Define2 declares a probe with 2 arguments on p.
func Define2[A, B any](p *Provider, name string, ta ArgType[A], tb ArgType[B]) *Probe2[A, B] {
	return &Probe2[A, B]{def: p.define(name, ta.WireType(), tb.WireType()), ta: ta, tb: tb}
}

// Handle returns the probe handle, or nil when the provider failed.
func (pr *Probe2[A, B]) Handle() *Handle { return pr.def.handle() }

// Enabled reports whether a tool is attached to the probe.
func (pr *Probe2[A, B]) Enabled() bool { return pr.def.live() != nil }

// Fire converts the arguments and fires the probe if it is enabled.
func (pr *Probe2[A, B]) Fire(a A, b B) {
	if h := pr.def.live(); h != nil {
		pr.fire(h, a, b)
	}
}

// FireFunc fires the probe with the arguments returned by args. args is only
// called when the probe is enabled.
func (pr *Probe2[A, B]) FireFunc(args func() (A, B)) {
	if h := pr.def.live(); h != nil {
		defer h.recoverFire()
		a, b := args()
		pr.fire(h, a, b)
	}
}

func (pr *Probe2[A, B]) fire(h *Handle, a A, b B) {
	defer h.recoverFire()
	h.Fire([]WireValue{
		Wrap(pr.ta, a).ToWire(),
		Wrap(pr.tb, b).ToWire(),
	})
}

// Probe3 is a probe with 3 arguments.
type Probe3[A, B, C any] struct {
	def *probeDef
	ta  ArgType[A]
	tb  ArgType[B]
	tc  ArgType[C]
}

// Define3 declares a probe with 3 arguments on p.
func Define3[A, B, C any](p *Provider, name string, ta ArgType[A], tb ArgType[B], tc ArgType[C]) *Probe3[A, B, C] {
	return &Probe3[A, B, C]{def: p.define(name, ta.WireType(), tb.WireType(), tc.WireType()), ta: ta, tb: tb, tc: tc}
}

// Handle returns the probe handle, or nil when the provider failed.
func (pr *Probe3[A, B, C]) Handle() *Handle { return pr.def.handle() }

// Enabled reports whether a tool is attached to the probe.
func (pr *Probe3[A, B, C]) Enabled() bool { return pr.def.live() != nil }

// Fire converts the arguments and fires the probe if it is enabled.
func (pr *Probe3[A, B, C]) Fire(a A, b B, c C) {
	if h := pr.def.live(); h != nil {
		pr.fire(h, a, b, c)
	}
}

// FireFunc fires the probe with the arguments returned by args. args is only
// called when the probe is enabled.
func (pr *Probe3[A, B, C]) FireFunc(args func() (A, B, C)) {
	if h := pr.def.live(); h != nil {
		defer h.recoverFire()
		a, b, c := args()
		pr.fire(h, a, b, c)
	}
}

func (pr *Probe3[A, B, C]) fire(h *Handle, a A, b B, c C) {
	defer h.recoverFire()
	h.Fire([]WireValue{
		Wrap(pr.ta, a).ToWire(),
		Wrap(pr.tb, b).ToWire(),
		Wrap(pr.tc, c).ToWire(),
	})
}

// Probe4 is a probe with 4 arguments.
type Probe4[A, B, C, D any] struct {
	def *probeDef
	ta  ArgType[A]
	tb  ArgType[B]
	tc  ArgType[C]
	td  ArgType[D]
}

// Define4 declares a probe with 4 arguments on p.
func Define4[A, B, C, D any](p *Provider, name string, ta ArgType[A], tb ArgType[B], tc ArgType[C], td ArgType[D]) *Probe4[A, B, C, D] {
	return &Probe4[A, B, C, D]{def: p.define(name, ta.WireType(), tb.WireType(), tc.WireType(), td.WireType()), ta: ta, tb: tb, tc: tc, td: td}
}

// Handle returns the probe handle, or nil when the provider failed.
func (pr *Probe4[A, B, C, D]) Handle() *Handle { return pr.def.handle() }

// Enabled reports whether a tool is attached to the probe.
func (pr *Probe4[A, B, C, D]) Enabled() bool { return pr.def.live() != nil }

// Fire converts the arguments and fires the probe if it is enabled.
func (pr *Probe4[A, B, C, D]) Fire(a A, b B, c C, d D) {
	if h := pr.def.live(); h != nil {
		pr.fire(h, a, b, c, d)
	}
}

// FireFunc fires the probe with the arguments returned by args. args is only
// called when the probe is enabled.
func (pr *Probe4[A, B, C, D]) FireFunc(args func() (A, B, C, D)) {
	if h := pr.def.live(); h != nil {
		defer h.recoverFire()
		a, b, c, d := args()
		pr.fire(h, a, b, c, d)
	}
}

func (pr *Probe4[A, B, C, D]) fire(h *Handle, a A, b B, c C, d D) {
	defer h.recoverFire()
	h.Fire([]WireValue{
		Wrap(pr.ta, a).ToWire(),
		Wrap(pr.tb, b).ToWire(),
		Wrap(pr.tc, c).ToWire(),
		Wrap(pr.td, d).ToWire(),
	})
}

// Probe5 is a probe with 5 arguments.
type Probe5[A, B, C, D, E any] struct {
	def *probeDef
	ta  ArgType[A]
	tb  ArgType[B]
	tc  ArgType[C]
	td  ArgType[D]
	te  ArgType[E]
}

// Define5 declares a probe with 5 arguments on p.
func Define5[A, B, C, D, E any](p *Provider, name string, ta ArgType[A], tb ArgType[B], tc ArgType[C], td ArgType[D], te ArgType[E]) *Probe5[A, B, C, D, E] {
	return &Probe5[A, B, C, D, E]{def: p.define(name, ta.WireType(), tb.WireType(), tc.WireType(), td.WireType(), te.WireType()), ta: ta, tb: tb, tc: tc, td: td, te: te}
}

// Handle returns the probe handle, or nil when the provider failed.
func (pr *Probe5[A, B, C, D, E]) Handle() *Handle { return pr.def.handle() }

// Enabled reports whether a tool is attached to the probe.
func (pr *Probe5[A, B, C, D, E]) Enabled() bool { return pr.def.live() != nil }

// Fire converts the arguments and fires the probe if it is enabled.
func (pr *Probe5[A, B, C, D, E]) Fire(a A, b B, c C, d D, e E) {
	if h := pr.def.live(); h != nil {
		pr.fire(h, a, b, c, d, e)
	}
}

// FireFunc fires the probe with the arguments returned by args. args is only
// called when the probe is enabled.
func (pr *Probe5[A, B, C, D, E]) FireFunc(args func() (A, B, C, D, E)) {
	if h := pr.def.live(); h != nil {
		defer h.recoverFire()
		a, b, c, d, e := args()
		pr.fire(h, a, b, c, d, e)
	}
}

func (pr *Probe5[A, B, C, D, E]) fire(h *Handle, a A, b B, c C, d D, e E) {
	defer h.recoverFire()
	h.Fire([]WireValue{
		Wrap(pr.ta, a).ToWire(),
		Wrap(pr.tb, b).ToWire(),
		Wrap(pr.tc, c).ToWire(),
		Wrap(pr.td, d).ToWire(),
		Wrap(pr.te, e).ToWire(),
	})
}

// Probe6 is a probe with 6 arguments.
type Probe6[A, B, C, D, E, F any] struct {
	def *probeDef
	ta  ArgType[A]
	tb  ArgType[B]
	tc  ArgType[C]
	td  ArgType[D]
	te  ArgType[E]
	tf  ArgType[F]
}

// Define6 declares a probe with 6 arguments on p.
func Define6[A, B, C, D, E, F any](p *Provider, name string, ta ArgType[A], tb ArgType[B], tc ArgType[C], td ArgType[D], te ArgType[E], tf ArgType[F]) *Probe6[A, B, C, D, E, F] {
	return &Probe6[A, B, C, D, E, F]{def: p.define(name, ta.WireType(), tb.WireType(), tc.WireType(), td.WireType(), te.WireType(), tf.WireType()), ta: ta, tb: tb, tc: tc, td: td, te: te, tf: tf}
}

// Handle returns the probe handle, or nil when the provider failed.
func (pr *Probe6[A, B, C, D, E, F]) Handle() *Handle { return pr.def.handle() }

// Enabled reports whether a tool is attached to the probe.
func (pr *Probe6[A, B, C, D, E, F]) Enabled() bool { return pr.def.live() != nil }

// Fire converts the arguments and fires the probe if it is enabled.
func (pr *Probe6[A, B, C, D, E, F]) Fire(a A, b B, c C, d D, e E, f F) {
	if h := pr.def.live(); h != nil {
		pr.fire(h, a, b, c, d, e, f)
	}
}

// FireFunc fires the probe with the arguments returned by args. args is only
// called when the probe is enabled.
func (pr *Probe6[A, B, C, D, E, F]) FireFunc(args func() (A, B, C, D, E, F)) {
	if h := pr.def.live(); h != nil {
		defer h.recoverFire()
		a, b, c, d, e, f := args()
		pr.fire(h, a, b, c, d, e, f)
	}
}

func (pr *Probe6[A, B, C, D, E, F]) fire(h *Handle, a A, b B, c C, d D, e E, f F) {
	defer h.recoverFire()
	h.Fire([]WireValue{
		Wrap(pr.ta, a).ToWire(),
		Wrap(pr.tb, b).ToWire(),
		Wrap(pr.tc, c).ToWire(),
		Wrap(pr.td, d).ToWire(),
		Wrap(pr.te, e).ToWire(),
		Wrap(pr.tf, f).ToWire(),
	})
}

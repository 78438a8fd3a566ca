// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

// ArgType converts caller values of type T to the fixed wire representation
// of one probe argument. New argument types are added by implementing it.
//
// ToWire must be total for every valid T and free of side effects, except for
// thunks wrapped by Lazy which it calls exactly once.
type ArgType[T any] interface {
	// WireType is the representation every value of T converts to.
	WireType() WireType
	// ToWire converts v.
	ToWire(v T) WireValue
	// DefaultWire is a placeholder of the right type, for when the real
	// value must not be computed.
	DefaultWire() WireValue
}

// Wrapper holds one argument value until it is converted. Wrappers are
// created per fire and never shared.
type Wrapper[T any] struct {
	t ArgType[T]
	v T
}

// Wrap stores v without converting or evaluating it.
func Wrap[T any](t ArgType[T], v T) Wrapper[T] {
	return Wrapper[T]{t: t, v: v}
}

// Value returns the wrapped value.
func (w Wrapper[T]) Value() T { return w.v }

// WireType returns the wire type the value converts to.
func (w Wrapper[T]) WireType() WireType { return w.t.WireType() }

// ToWire converts the wrapped value.
func (w Wrapper[T]) ToWire() WireValue { return w.t.ToWire(w.v) }

// DefaultWire returns the placeholder for the wrapped type.
func (w Wrapper[T]) DefaultWire() WireValue { return w.t.DefaultWire() }

type lazyArg[T any] struct {
	inner ArgType[T]
}

// Lazy defers the computation of an argument. The thunk is never called by
// Wrap; ToWire calls it exactly once, so it only runs for enabled probes. A
// nil thunk converts to the default of inner.
func Lazy[T any](inner ArgType[T]) ArgType[func() T] {
	return lazyArg[T]{inner: inner}
}

func (a lazyArg[T]) WireType() WireType { return a.inner.WireType() }

func (a lazyArg[T]) ToWire(f func() T) WireValue {
	if f == nil {
		return a.inner.DefaultWire()
	}
	return a.inner.ToWire(f())
}

func (a lazyArg[T]) DefaultWire() WireValue { return a.inner.DefaultWire() }

type ptrArg[T any] struct {
	inner ArgType[T]
}

// Ptr accepts optional values. A nil pointer converts to the default of
// inner.
func Ptr[T any](inner ArgType[T]) ArgType[*T] {
	return ptrArg[T]{inner: inner}
}

func (a ptrArg[T]) WireType() WireType { return a.inner.WireType() }

func (a ptrArg[T]) ToWire(v *T) WireValue {
	if v == nil {
		return a.inner.DefaultWire()
	}
	return a.inner.ToWire(*v)
}

func (a ptrArg[T]) DefaultWire() WireValue { return a.inner.DefaultWire() }

type convertArg[T, U any] struct {
	inner ArgType[U]
	fn    func(T) U
}

// Convert maps values of T onto an existing argument type. fn must be total
// and free of side effects.
func Convert[T, U any](inner ArgType[U], fn func(T) U) ArgType[T] {
	return convertArg[T, U]{inner: inner, fn: fn}
}

func (a convertArg[T, U]) WireType() WireType { return a.inner.WireType() }

func (a convertArg[T, U]) ToWire(v T) WireValue { return a.inner.ToWire(a.fn(v)) }

func (a convertArg[T, U]) DefaultWire() WireValue { return a.inner.DefaultWire() }

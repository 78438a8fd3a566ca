// Copyright (C) 2017 Librato, Inc. All rights reserved.

package probe

import (
	"fmt"
	"math"
	"unsafe"
)

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// intArg sign-extends into the wire bits.
type intArg[T signed] struct{ wt WireType }

func (a intArg[T]) WireType() WireType     { return a.wt }
func (a intArg[T]) ToWire(v T) WireValue   { return WireValue{Type: a.wt, Bits: uint64(int64(v))} }
func (a intArg[T]) DefaultWire() WireValue { return WireValue{Type: a.wt} }

// uintArg zero-extends into the wire bits.
type uintArg[T unsigned] struct{ wt WireType }

func (a uintArg[T]) WireType() WireType     { return a.wt }
func (a uintArg[T]) ToWire(v T) WireValue   { return WireValue{Type: a.wt, Bits: uint64(v)} }
func (a uintArg[T]) DefaultWire() WireValue { return WireValue{Type: a.wt} }

type boolArg struct{}

func (boolArg) WireType() WireType { return WireUint8 }

func (boolArg) ToWire(v bool) WireValue {
	if v {
		return WireValue{Type: WireUint8, Bits: 1}
	}
	return WireValue{Type: WireUint8}
}

func (boolArg) DefaultWire() WireValue { return WireValue{Type: WireUint8} }

type floatArg[T ~float32 | ~float64] struct{}

func (floatArg[T]) WireType() WireType { return WireFloat64 }

func (floatArg[T]) ToWire(v T) WireValue {
	return WireValue{Type: WireFloat64, Bits: math.Float64bits(float64(v))}
}

func (floatArg[T]) DefaultWire() WireValue { return WireValue{Type: WireFloat64} }

// stringArg borrows the bytes of the string; backends must not modify or
// keep them past Fire.
type stringArg struct{}

func (stringArg) WireType() WireType { return WireBytes }

func (stringArg) ToWire(v string) WireValue {
	return WireValue{
		Type: WireBytes,
		Bits: uint64(len(v)),
		Data: unsafe.Slice(unsafe.StringData(v), len(v)),
	}
}

func (stringArg) DefaultWire() WireValue { return WireValue{Type: WireBytes} }

type bytesArg struct{}

func (bytesArg) WireType() WireType { return WireBytes }

func (bytesArg) ToWire(v []byte) WireValue {
	return WireValue{Type: WireBytes, Bits: uint64(len(v)), Data: v}
}

func (bytesArg) DefaultWire() WireValue { return WireValue{Type: WireBytes} }

// errorArg converts the error message; nil is empty text.
type errorArg struct{}

func (errorArg) WireType() WireType { return WireBytes }

func (errorArg) ToWire(v error) WireValue {
	if v == nil {
		return WireValue{Type: WireBytes}
	}
	return String.ToWire(v.Error())
}

func (errorArg) DefaultWire() WireValue { return WireValue{Type: WireBytes} }

type stringerArg[T fmt.Stringer] struct{}

func (stringerArg[T]) WireType() WireType { return WireBytes }

func (stringerArg[T]) ToWire(v T) WireValue { return String.ToWire(v.String()) }

func (stringerArg[T]) DefaultWire() WireValue { return WireValue{Type: WireBytes} }

// Built-in argument types.
var (
	Int8  ArgType[int8]  = intArg[int8]{WireInt8}
	Int16 ArgType[int16] = intArg[int16]{WireInt16}
	Int32 ArgType[int32] = intArg[int32]{WireInt32}
	Int64 ArgType[int64] = intArg[int64]{WireInt64}
	Int   ArgType[int]   = intArg[int]{WireInt64}

	Uint8   ArgType[uint8]   = uintArg[uint8]{WireUint8}
	Uint16  ArgType[uint16]  = uintArg[uint16]{WireUint16}
	Uint32  ArgType[uint32]  = uintArg[uint32]{WireUint32}
	Uint64  ArgType[uint64]  = uintArg[uint64]{WireUint64}
	Uint    ArgType[uint]    = uintArg[uint]{WireUint64}
	Uintptr ArgType[uintptr] = uintArg[uintptr]{WireUint64}

	// Bool converts to a uint8 0 or 1.
	Bool    ArgType[bool]    = boolArg{}
	Float32 ArgType[float32] = floatArg[float32]{}
	Float64 ArgType[float64] = floatArg[float64]{}

	// String and Bytes convert to a pointer and length pair.
	String ArgType[string] = stringArg{}
	Bytes  ArgType[[]byte] = bytesArg{}
	Error  ArgType[error]  = errorArg{}
)

// Stringer converts any fmt.Stringer through its String method.
func Stringer[T fmt.Stringer]() ArgType[T] {
	return stringerArg[T]{}
}

// Copyright (C) 2016 Librato, Inc. All rights reserved.

// Package bson is a small append-only BSON document writer. It supports only
// the element kinds probe events need.
package bson

import (
	"encoding/binary"
	"math"
	"strconv"

	"fortio.org/safecast"
	"github.com/pkg/errors"
)

// ErrTooLarge is recorded when a string, binary or document exceeds the
// int32 length BSON allows.
var ErrTooLarge = errors.New("bson: element too large")

// element kinds
const (
	kindDouble   byte = 0x01
	kindString   byte = 0x02
	kindDocument byte = 0x03
	kindArray    byte = 0x04
	kindBinary   byte = 0x05
	kindBool     byte = 0x08
	kindInt32    byte = 0x10
	kindInt64    byte = 0x12

	subtypeGeneric byte = 0x00
)

// Writer appends the elements of one BSON document. Length overflows are
// remembered and reported by Err; the writer keeps going.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns a Writer positioned at the start of a document.
func NewWriter() *Writer {
	w := &Writer{}
	w.Reset()
	return w
}

// Reset discards the document and starts a new one, keeping the buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.err = nil
	w.placeholder()
}

// Bytes returns the document. It is complete only after Close.
func (w *Writer) Bytes() []byte { return w.buf }

// Err returns the first length overflow, if any.
func (w *Writer) Err() error { return w.err }

// Close terminates the top-level document.
func (w *Writer) Close() {
	w.End(0)
}

// String appends a UTF-8 string element.
func (w *Writer) String(k, v string) {
	w.key(kindString, k)
	w.length(len(v) + 1)
	w.buf = append(w.buf, v...)
	w.buf = append(w.buf, 0)
}

// StringBytes appends v as a string element without converting it first.
func (w *Writer) StringBytes(k string, v []byte) {
	w.key(kindString, k)
	w.length(len(v) + 1)
	w.buf = append(w.buf, v...)
	w.buf = append(w.buf, 0)
}

// Binary appends a generic binary element.
func (w *Writer) Binary(k string, v []byte) {
	w.key(kindBinary, k)
	w.length(len(v))
	w.buf = append(w.buf, subtypeGeneric)
	w.buf = append(w.buf, v...)
}

// Int appends v as an int32 element when it fits and as an int64 otherwise.
func (w *Writer) Int(k string, v int) {
	if v32, err := safecast.Conv[int32](v); err == nil {
		w.Int32(k, v32)
		return
	}
	w.Int64(k, int64(v))
}

// Int32 appends an int32 element.
func (w *Writer) Int32(k string, v int32) {
	w.key(kindInt32, k)
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// Int64 appends an int64 element.
func (w *Writer) Int64(k string, v int64) {
	w.key(kindInt64, k)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// Float64 appends a double element.
func (w *Writer) Float64(k string, v float64) {
	w.key(kindDouble, k)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// Bool appends a boolean element.
func (w *Writer) Bool(k string, v bool) {
	w.key(kindBool, k)
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// BeginArray opens an array element and returns its start for End. Keys of
// its members must be ArrayKey(i).
func (w *Writer) BeginArray(k string) int {
	w.key(kindArray, k)
	return w.placeholder()
}

// BeginDocument opens an embedded document element and returns its start
// for End.
func (w *Writer) BeginDocument(k string) int {
	w.key(kindDocument, k)
	return w.placeholder()
}

// End closes the array or document that starts at start.
func (w *Writer) End(start int) {
	w.buf = append(w.buf, 0)
	n, err := safecast.Conv[int32](len(w.buf) - start)
	if err != nil && w.err == nil {
		w.err = errors.Wrapf(ErrTooLarge, "document of %d bytes", len(w.buf)-start)
	}
	binary.LittleEndian.PutUint32(w.buf[start:], uint32(n))
}

// ArrayKey returns the element key of the i-th array member.
func ArrayKey(i int) string {
	if i < len(arrayKeys) {
		return arrayKeys[i]
	}
	return strconv.Itoa(i)
}

var arrayKeys = [...]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}

func (w *Writer) key(kind byte, name string) {
	w.buf = append(w.buf, kind)
	w.buf = append(w.buf, name...)
	w.buf = append(w.buf, 0)
}

func (w *Writer) length(n int) {
	v, err := safecast.Conv[int32](n)
	if err != nil && w.err == nil {
		w.err = errors.Wrapf(ErrTooLarge, "length %d", n)
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// placeholder reserves an int32 length to be filled in by End.
func (w *Writer) placeholder() int {
	pos := len(w.buf)
	w.buf = append(w.buf, 0, 0, 0, 0)
	return pos
}

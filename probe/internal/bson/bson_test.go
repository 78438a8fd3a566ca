// Copyright (C) 2016 Librato, Inc. All rights reserved.

package bson

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mbson "gopkg.in/mgo.v2/bson"
)

func TestWriterDecodes(t *testing.T) {
	w := NewWriter()
	w.String("Provider", "http")
	w.StringBytes("Probe", []byte("request"))
	w.Int("Small", 42)
	w.Int("Big", math.MaxInt32+1)
	w.Int64("Neg", -7)
	w.Float64("Pi", 3.5)
	w.Bool("Yes", true)
	w.Bool("No", false)
	w.Binary("Raw", []byte{1, 2, 3})
	arr := w.BeginArray("Args")
	w.Int64(ArrayKey(0), 1)
	w.String(ArrayKey(1), "two")
	w.End(arr)
	doc := w.BeginDocument("Nested")
	w.Int32("n", 9)
	w.End(doc)
	w.Close()
	require.NoError(t, w.Err())

	m := mbson.M{}
	require.NoError(t, mbson.Unmarshal(w.Bytes(), m))

	assert.Equal(t, "http", m["Provider"])
	assert.Equal(t, "request", m["Probe"])
	assert.Equal(t, 42, m["Small"])
	assert.Equal(t, int64(math.MaxInt32+1), m["Big"])
	assert.Equal(t, int64(-7), m["Neg"])
	assert.Equal(t, 3.5, m["Pi"])
	assert.Equal(t, true, m["Yes"])
	assert.Equal(t, false, m["No"])
	assert.Equal(t, []byte{1, 2, 3}, m["Raw"])
	assert.Equal(t, []interface{}{int64(1), "two"}, m["Args"])
	assert.Equal(t, mbson.M{"n": 9}, m["Nested"])
}

func TestWriterEmptyDocument(t *testing.T) {
	w := NewWriter()
	w.Close()
	assert.Equal(t, []byte{5, 0, 0, 0, 0}, w.Bytes())
}

func TestWriterReset(t *testing.T) {
	w := NewWriter()
	w.String("k", strings.Repeat("x", 100))
	w.Close()

	w.Reset()
	w.String("k", "first")
	w.Close()
	first := append([]byte(nil), w.Bytes()...)

	w.Reset()
	w.String("k", "first")
	w.Close()
	assert.Equal(t, first, w.Bytes())
	assert.NoError(t, w.Err())
}

func TestArrayKey(t *testing.T) {
	assert.Equal(t, "0", ArrayKey(0))
	assert.Equal(t, "11", ArrayKey(11))
	assert.Equal(t, "12", ArrayKey(12))
	assert.Equal(t, "100", ArrayKey(100))
}

// Copyright (C) 2020 Librato, Inc. All rights reserved.

package backend

import (
	"context"
	"strconv"
	"time"

	"fortio.org/safecast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/appoptics/probers-go/probe"

// Attribute keys of probe spans.
const (
	AttrProvider  = "probe.provider"
	AttrProbe     = "probe.name"
	attrArgPrefix = "probe.arg"
)

// OtelTracer turns each fire into a zero-length OpenTelemetry span carrying
// one attribute per argument.
type OtelTracer struct {
	*registry
	tracer trace.Tracer
}

// NewOtel uses tp, or the global provider when tp is nil.
func NewOtel(tp trace.TracerProvider, patterns []string) *OtelTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	t := &OtelTracer{tracer: tp.Tracer(instrumentationName)}
	t.registry = newRegistry(patterns, sinkFunc(t.emit))
	return t
}

// ArgKey is the attribute or tag key of the i-th argument.
func ArgKey(i int) string {
	return attrArgPrefix + strconv.Itoa(i)
}

func (t *OtelTracer) emit(p *probe, args []WireValue) {
	attrs := make([]attribute.KeyValue, 0, len(args)+2)
	attrs = append(attrs,
		attribute.String(AttrProvider, p.provider),
		attribute.String(AttrProbe, p.name))
	for i, a := range args {
		attrs = append(attrs, otelAttr(ArgKey(i), a))
	}

	now := time.Now()
	_, span := t.tracer.Start(context.Background(), p.fullName,
		trace.WithTimestamp(now),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...))
	span.End(trace.WithTimestamp(now))
}

func otelAttr(k string, a WireValue) attribute.KeyValue {
	switch {
	case a.Type.Signed():
		return attribute.Int64(k, a.Int())
	case a.Type.Unsigned():
		if v, err := safecast.Conv[int64](a.Uint()); err == nil {
			return attribute.Int64(k, v)
		}
		return attribute.String(k, strconv.FormatUint(a.Uint(), 10))
	case a.Type == WireFloat64:
		return attribute.Float64(k, a.Float())
	}
	return attribute.String(k, string(a.Data))
}

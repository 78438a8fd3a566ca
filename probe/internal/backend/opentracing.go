// Copyright (C) 2017 Librato, Inc. All rights reserved.

package backend

import (
	"time"

	ot "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const componentName = "probers"

// OpenTracingTracer turns each fire into a finished OpenTracing span with one
// tag per argument.
type OpenTracingTracer struct {
	*registry
	tracer ot.Tracer
}

// NewOpenTracing uses tracer, or the global tracer when it is nil.
func NewOpenTracing(tracer ot.Tracer, patterns []string) *OpenTracingTracer {
	if tracer == nil {
		tracer = ot.GlobalTracer()
	}
	t := &OpenTracingTracer{tracer: tracer}
	t.registry = newRegistry(patterns, sinkFunc(t.emit))
	return t
}

func (t *OpenTracingTracer) emit(p *probe, args []WireValue) {
	tags := ot.Tags{
		string(ext.Component): componentName,
		AttrProvider:          p.provider,
		AttrProbe:             p.name,
	}
	for i, a := range args {
		tags[ArgKey(i)] = a.Value()
	}

	now := time.Now()
	span := t.tracer.StartSpan(p.fullName, ot.StartTime(now), tags)
	span.FinishWithOptions(ot.FinishOptions{FinishTime: now})
}

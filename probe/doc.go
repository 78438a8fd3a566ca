// Copyright (C) 2017 Librato, Inc. All rights reserved.

/*
Package probe declares static tracing probes (USDT-style tracepoints) that
cost one atomic load while no tool is attached.

Probes are grouped into providers. A provider registers its probes with a
tracer backend once, on first use, and caches the outcome for the life of the
process: later calls never block and a failure is never retried.

	var (
		web      = probe.NewProvider("web")
		request  = probe.Define2(web, "request", probe.String, probe.Int32)
		response = probe.Define2(web, "response", probe.Int32, probe.Lazy(probe.String))
	)

	func handle(w http.ResponseWriter, r *http.Request) {
		request.Fire(r.URL.Path, 1)
		// the thunk only runs while a tool is attached
		response.Fire(200, func() string { return dumpHeaders(w) })
		// or keep the whole argument evaluation on the enabled path
		request.FireFunc(func() (string, int32) { return r.URL.String(), 2 })
	}

Initialization errors are never reported by Fire. Check them explicitly:

	if err := web.TryInit(); err != nil {
		log.Printf("web probes unavailable: %v", err)
	}

The default tracer is chosen by the PROBERS_BACKEND environment variable (or
the probers.yaml or probers.toml file): none, udp, collector, otel or
opentracing. SetTracer replaces it; WithTracer pins one provider to a tracer.
*/
package probe

// Package tracer sets up an OpenTelemetry tracer provider for slimgoose.
//
// The hook registries behind every SchemaBuilder start a span named
// "slimgoose.hooks.<kind>.<method>" around each decorated call that has pre
// hooks, and record the error of a failing hook or method on it. Give them a
// tracer through slimgoose.WithTracer or by including FXModule:
//
//	tc, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "billing",
//	    AppEnv:       "production",
//	    EnableExport: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tc.Shutdown(context.Background())
//
//	sg := slimgoose.New(nil, slimgoose.WithTracer(tc.Tracer()))
//
// With EnableExport the spans go to an OTLP HTTP collector configured through
// the standard OTEL_EXPORTER_OTLP_ENDPOINT family of variables. SetGlobal also
// installs the provider and the W3C trace context propagator as otel globals.
//
// The logger package adds trace_id and span_id of the active span to entries
// logged through the *WithContext methods when tracing is enabled there.
package tracer

// Package middleware provides observability for the yui server and engine.
//
// # Prometheus Metrics
//
// Metrics is both an HTTP middleware and an engine.Observer:
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	eng := engine.New(engine.WithObserver(m))
//	r := chi.NewRouter()
//	r.Use(m.Middleware)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Collected series (namespace "yui" by default):
//   - yui_renders_total{status}: renders by result status
//   - yui_render_duration_seconds: render duration histogram
//   - yui_patches_total{result}: patches applied or failed
//   - yui_missing_targets_total: patches whose target was not found
//   - yui_http_requests_total{route,code}, yui_http_request_duration_seconds{route}
//   - yui_websocket_clients, yui_websocket_errors_total{type}, yui_frames_sent_total
//
// # OpenTelemetry
//
// OpenTelemetry wraps HTTP handlers in server spans and Tracer wraps
// engine calls in internal spans. Both use the global tracer provider;
// configure it in main before starting the server.
package middleware

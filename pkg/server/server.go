package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/yui/pkg/middleware"
	"github.com/vango-dev/yui/pkg/render"
)

// Server is the HTTP/WebSocket front end of a Controller.
type Server struct {
	ctrl       *Controller
	hub        *Hub
	config     *ServerConfig
	renderer   *render.Renderer
	metrics    *middleware.Metrics
	gatherer   prometheus.Gatherer
	tracerName string
	tracing    bool
	handler    http.Handler
	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the server configuration. Unset fields keep defaults.
func WithConfig(c *ServerConfig) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithMetrics records HTTP and WebSocket metrics in m and serves g on
// /metrics.
func WithMetrics(m *middleware.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithTracing traces every request under the named tracer.
func WithTracing(tracerName string) Option {
	return func(s *Server) {
		s.tracing = true
		s.tracerName = tracerName
	}
}

// New creates a Server for ctrl and makes its hub the controller's
// broadcaster.
func New(ctrl *Controller, opts ...Option) *Server {
	s := &Server{
		ctrl:     ctrl,
		renderer: render.NewRenderer(render.RendererConfig{}),
		logger:   slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.config = s.config.withDefaults()
	s.hub = NewHub(s.config, s.handleFrame)
	if s.metrics != nil {
		s.hub.SetMetrics(s.metrics)
	}
	ctrl.SetBroadcaster(s.hub)
	s.handler = s.routes()
	return s
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
	s.hub.SetLogger(logger.With("component", "hub"))
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Config returns the effective configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	if s.tracing {
		r.Use(middleware.OpenTelemetry(
			middleware.WithTracerName(s.tracerName),
			middleware.WithRequestFilter(func(r *http.Request) bool {
				return r.URL.Path != "/metrics" && r.URL.Path != "/ws"
			}),
		))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/render/{container}", s.handleRender)
		r.Post("/update", s.handleUpdate)
		r.Get("/state", s.handleGetState)
		r.Post("/state", s.handleSetState)
		r.Get("/elements/{id}", s.handleElement)
		r.Post("/theme/{name}", s.handleTheme)
	})
	r.Get("/preview", s.handlePreview)
	r.Handle("/ws", s.hub)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// logRequests logs each request at debug level, or warn for 5xx.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", chimw.GetReqID(r.Context()))
	})
}

// Run serves on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown disconnects WebSocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.hub.Close()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

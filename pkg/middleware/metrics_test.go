package middleware

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/yui/pkg/engine"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(WithRegistry(reg)), reg
}

func TestMetrics_Observer(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.OnRender("root", engine.StatusOK, 5*time.Millisecond)
	m.OnRender("root", engine.StatusOK, 5*time.Millisecond)
	m.OnRender("nope", engine.StatusContainerNotFound, time.Millisecond)
	m.OnPatch("title", true)
	m.OnPatch("ghost", false)
	m.OnMissingTarget("ghost")

	tests := []struct {
		name string
		c    prometheus.Counter
		want float64
	}{
		{"renders ok", m.rendersTotal.WithLabelValues("ok"), 2},
		{"renders not found", m.rendersTotal.WithLabelValues("container not found"), 1},
		{"patches applied", m.patchesTotal.WithLabelValues("applied"), 1},
		{"patches failed", m.patchesTotal.WithLabelValues("failed"), 1},
		{"missing targets", m.missingTargets, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metricCounterValue(t, tt.c); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if n := metricHistogramCount(t, m.renderDuration); n != 3 {
		t.Errorf("render duration samples = %d, want 3", n)
	}
}

func TestMetrics_EngineIntegration(t *testing.T) {
	m, _ := newTestMetrics(t)
	e := engine.New(engine.WithObserver(m))

	e.RenderJSON("root", `{"id": "title", "type": "Label"}`)
	e.Update(`[{"target": "title", "change": {"text": "hi"}}, {"target": "ghost", "change": {"text": "x"}}]`)

	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("renders ok = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.missingTargets); got != 1 {
		t.Errorf("missing targets = %v, want 1", got)
	}
}

func TestMetrics_Middleware(t *testing.T) {
	m, _ := newTestMetrics(t)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/elements/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "ghost" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("{}"))
	})

	for _, path := range []string{"/api/elements/a", "/api/elements/b", "/api/elements/ghost"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := metricCounterValue(t, m.httpRequests.WithLabelValues("/api/elements/{id}", "200")); got != 2 {
		t.Errorf("200 requests = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.httpRequests.WithLabelValues("/api/elements/{id}", "404")); got != 1 {
		t.Errorf("404 requests = %v, want 1", got)
	}
}

func TestMetrics_WebSocket(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.RecordClientConnect()
	m.RecordClientConnect()
	m.RecordClientDisconnect()
	m.RecordFrames(3)
	m.RecordWebSocketError(stderrors.New("i/o timeout"))

	if got := metricGaugeValue(t, m.wsClients); got != 1 {
		t.Errorf("clients = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.framesSent); got != 3 {
		t.Errorf("frames = %v, want 3", got)
	}
	if got := metricCounterValue(t, m.wsErrors.WithLabelValues("timeout")); got != 1 {
		t.Errorf("timeout errors = %v, want 1", got)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "unknown"},
		{stderrors.New("read: i/o Timeout"), "timeout"},
		{stderrors.New("websocket: close 1006"), "closed"},
		{stderrors.New("protocol: frame too large"), "too_large"},
		{stderrors.New("protocol: invalid frame type"), "protocol"},
		{stderrors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := categorizeError(tt.err); got != tt.want {
			t.Errorf("categorizeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewMetrics(WithRegistry(reg))
}

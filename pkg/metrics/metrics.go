// Package metrics counts loop activity and serves it over HTTP.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericogr/pico-loops/pkg/sensor"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry
	cycles   *prometheus.CounterVec
	errs     *prometheus.CounterVec
	value    *prometheus.GaugeVec
	raw      *prometheus.GaugeVec
	interval prometheus.Gauge

	mu      sync.RWMutex
	last    map[string]sensor.Reading
	current time.Duration
	started time.Time
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loop_cycles_total",
			Help: "Completed loop iterations by loop.",
		}, []string{"loop"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loop_errors_total",
			Help: "Errors that ended a loop, by loop.",
		}, []string{"loop"}),
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reading_value",
			Help: "Last calibrated value by source.",
		}, []string{"source"}),
		raw: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reading_raw",
			Help: "Last raw 16-bit count by source.",
		}, []string{"source"}),
		interval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blink_interval_seconds",
			Help: "Current blink interval.",
		}),
		last:    map[string]sensor.Reading{},
		started: time.Now(),
	}
	m.registry.MustRegister(m.cycles, m.errs, m.value, m.raw, m.interval)
	return m
}

func (m *Metrics) Cycle(loop string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(loop).Inc()
}

func (m *Metrics) Error(loop string) {
	if m == nil {
		return
	}
	m.errs.WithLabelValues(loop).Inc()
}

func (m *Metrics) Observe(readings []sensor.Reading) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range readings {
		m.value.WithLabelValues(r.Source).Set(r.Value)
		m.raw.WithLabelValues(r.Source).Set(float64(r.Raw))
		m.last[r.Source] = r
	}
}

func (m *Metrics) SetInterval(d time.Duration) {
	if m == nil {
		return
	}
	m.interval.Set(d.Seconds())
	m.mu.Lock()
	m.current = d
	m.mu.Unlock()
}

type status struct {
	Uptime     string           `json:"uptime"`
	IntervalMs int64            `json:"interval_ms"`
	Readings   []sensor.Reading `json:"readings"`
}

func (m *Metrics) status() status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := status{Uptime: time.Since(m.started).Truncate(time.Second).String(), IntervalMs: m.current.Milliseconds(), Readings: make([]sensor.Reading, 0, len(m.last))}
	for _, r := range m.last {
		s.Readings = append(s.Readings, r)
	}
	return s
}

func (m *Metrics) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods("GET")
	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.status())
	}).Methods("GET")
	return r
}

// Serve listens on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: handlers.LoggingHandler(os.Stdout, m.NewRouter()), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Printf("metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

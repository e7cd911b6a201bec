package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matteso1/radixkv/internal/store"
)

// Metrics collects store events as Prometheus metrics. It implements
// store.Observer.
type Metrics struct {
	factory promauto.Factory

	events *prometheus.CounterVec
	uptime prometheus.GaugeFunc

	startTime time.Time
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		factory:   promauto.With(reg),
		startTime: time.Now(),
	}

	m.events = m.factory.NewCounterVec(prometheus.CounterOpts{
		Name: "radixkv_store_events_total",
		Help: "Total mutation events emitted by the store",
	}, []string{"op"})

	m.uptime = m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "radixkv_uptime_seconds",
		Help: "Time since metrics were created",
	}, func() float64 {
		return time.Since(m.startTime).Seconds()
	})

	return m
}

// OnEvent implements store.Observer.
func (m *Metrics) OnEvent(kind store.EventType, _ string) {
	m.events.WithLabelValues(kind.String()).Inc()
}

// TrackStore exports the live key count of s. Scrapes take the store's read lock.
func (m *Metrics) TrackStore(s *store.Store) {
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "radixkv_store_keys",
		Help: "Number of keys currently stored",
	}, func() float64 {
		return float64(s.Len())
	})
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RunServer serves /metrics on addr until ctx is cancelled. An empty addr
// disables the server.
func RunServer(ctx context.Context, addr string, g prometheus.Gatherer) error {
	if addr == "" {
		slog.Info("metrics server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintf(w, "OK")
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down metrics server", "err", err)
		}
	}()

	slog.Info("metrics server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

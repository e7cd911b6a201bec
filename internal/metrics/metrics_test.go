package metrics

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteso1/radixkv/internal/store"
)

func TestMetrics_CountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	s := store.New()
	s.Attach(m)

	_, err := s.Put("Apple", "a")
	require.NoError(t, err)
	_, err = s.Put("Apple", "b")
	require.NoError(t, err)
	_, err = s.Put("Banana", "c")
	require.NoError(t, err)
	_, err = s.Delete("Apple")
	require.NoError(t, err)
	_, err = s.Delete("Apple")
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.events.WithLabelValues("PUT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("DELETE")))
}

func TestMetrics_TrackStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	s := store.New()
	m.TrackStore(s)
	_, _ = s.Put("Apple", "a")
	_, _ = s.Put("Banana", "b")

	n, err := testutil.GatherAndCount(reg, "radixkv_store_keys")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "radixkv_store_keys" {
			assert.Equal(t, 2.0, f.GetMetric()[0].GetGauge().GetValue())
		}
	}
}

func TestMetrics_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.OnEvent(store.EventPut, "Apple")
	m.OnEvent(store.EventDelete, "Apple")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	body := rec.Body.String()
	checks := []string{
		"radixkv_uptime_seconds",
		`radixkv_store_events_total{op="PUT"} 1`,
		`radixkv_store_events_total{op="DELETE"} 1`,
	}
	for _, check := range checks {
		assert.Contains(t, body, check)
	}
}

func TestRunServer_Disabled(t *testing.T) {
	err := RunServer(context.Background(), "", prometheus.NewRegistry())
	assert.NoError(t, err)
}

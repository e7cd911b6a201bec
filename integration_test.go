package radixkv_test

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matteso1/radixkv/internal/metrics"
	"github.com/matteso1/radixkv/internal/store"
)

// Integration tests verify end-to-end functionality across components.

type sequence struct {
	mu   sync.Mutex
	keys []string
}

func (s *sequence) OnEvent(kind store.EventType, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, kind.String()+" "+key)
}

func TestE2E_FruitScenario(t *testing.T) {
	s := store.New()
	seq := &sequence{}
	s.Attach(seq)

	_, err := s.Put("Apple", "A sweet red fruit")
	require.NoError(t, err)
	_, err = s.Put("Banana", "A sweet yellow fruit")
	require.NoError(t, err)

	v, ok, err := s.Get("Apple")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A sweet red fruit", v)

	_, ok, _ = s.Get("Carrot")
	assert.False(t, ok)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Put("Carrot", "An orange vegetable")
		assert.NoError(t, err)
		replaced, err := s.Put("Apple", "A crunchy fruit")
		assert.NoError(t, err)
		assert.True(t, replaced)
	}()

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			apple, ok, err := s.Get("Apple")
			assert.NoError(t, err)
			assert.True(t, ok)
			assert.Contains(t, []string{"A sweet red fruit", "A crunchy fruit"}, apple)

			if carrot, ok, _ := s.Get("Carrot"); ok {
				assert.Equal(t, "An orange vegetable", carrot)
			}
		}()
	}
	wg.Wait()

	v, _, _ = s.Get("Apple")
	assert.Equal(t, "A crunchy fruit", v)
	_, ok, _ = s.Get("Carrot")
	assert.True(t, ok)

	assert.Equal(t, []string{
		"PUT Apple",
		"PUT Banana",
		"PUT Carrot",
		"PUT Apple",
	}, seq.keys)
}

func TestE2E_OrderStatistics(t *testing.T) {
	s := store.New()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	s.Attach(m)

	var want []string
	for i := 0; i < 200; i++ {
		k := fmt.Sprintf("Item%c%c%c", 'a'+i%26, 'A'+(i/26)%26, 'a'+(i*7)%26)
		want = append(want, k)
		_, err := s.Put(k, k)
		require.NoError(t, err)
	}
	sort.Strings(want)

	for i, k := range want {
		e, ok := s.GetNth(i)
		require.True(t, ok)
		require.Equal(t, k, e.Key)
	}
	_, ok := s.GetNth(len(want))
	assert.False(t, ok)

	// Delete every other rank from the front and check the survivors.
	for i := 0; i < 100; i++ {
		e, ok := s.DeleteNth(i)
		require.True(t, ok)
		require.Equal(t, want[2*i], e.Key)
	}
	for i, e := range s.Entries() {
		assert.Equal(t, want[2*i+1], e.Key)
	}

	expected := `
# HELP radixkv_store_events_total Total mutation events emitted by the store
# TYPE radixkv_store_events_total counter
radixkv_store_events_total{op="DELETE"} 100
radixkv_store_events_total{op="PUT"} 200
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "radixkv_store_events_total"))
}

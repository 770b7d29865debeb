package health

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ratioSnapshot has safe endpoints out of total.
func ratioSnapshot(safe, total int) Snapshot {
	snap := Snapshot{Endpoints: make([]EndpointHealth, total)}
	for i := 0; i < safe; i++ {
		snap.Endpoints[i] = EndpointHealth{Facets: map[Facet]FacetResult{
			FacetSafe: {Facet: FacetSafe, Status: http.StatusOK},
		}}
	}
	return snap
}

func TestSnapshot_SafeRatio(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want float64
	}{
		{"no endpoints", Snapshot{}, 1},
		{"none safe", ratioSnapshot(0, 2), 0},
		{"half safe", ratioSnapshot(1, 2), 0.5},
		{"all safe", ratioSnapshot(3, 3), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.SafeRatio())
		})
	}
}

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -1, DefaultHistorySize},
		{"custom size", 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.size)
			assert.Len(t, h.data, tt.expected)
			assert.Equal(t, 0, h.Count())
			assert.Nil(t, h.Last(5))
		})
	}
}

func TestHistory_LastIsOldestFirst(t *testing.T) {
	h := NewHistory(10)
	h.Push(ratioSnapshot(0, 2))
	h.Push(ratioSnapshot(1, 2))
	h.Push(ratioSnapshot(2, 2))

	assert.Equal(t, 3, h.Count())
	assert.Equal(t, []float64{0, 0.5, 1}, h.Last(10))
	assert.Equal(t, []float64{0.5, 1}, h.Last(2))
	assert.Nil(t, h.Last(0))
}

func TestHistory_Overflow(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i <= 4; i++ {
		h.Push(ratioSnapshot(i, 4))
	}

	require.Equal(t, 3, h.Count())
	assert.Equal(t, []float64{0.5, 0.75, 1}, h.Last(3))
}

func TestHistory_Concurrent(t *testing.T) {
	h := NewHistory(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Push(ratioSnapshot(1, 1))
				_ = h.Last(4)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, h.Count())
	assert.Equal(t, []float64{1, 1}, h.Last(2))
}

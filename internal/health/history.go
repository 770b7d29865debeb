package health

import "sync"

// DefaultHistorySize is the default number of snapshots a History keeps.
const DefaultHistorySize = 60

// History keeps the safe ratio of recent snapshots in a ring buffer, for
// trend lines. Safe for concurrent use.
type History struct {
	mu    sync.RWMutex
	data  []float64
	head  int
	count int
}

// NewHistory creates a history holding up to size snapshots.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{data: make([]float64, size)}
}

// Push records snap's safe ratio, overwriting the oldest once full.
func (h *History) Push(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data[h.head] = snap.SafeRatio()
	h.head = (h.head + 1) % len(h.data)
	if h.count < len(h.data) {
		h.count++
	}
}

// Last returns up to count ratios, oldest first.
func (h *History) Last(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if count <= 0 || h.count == 0 {
		return nil
	}
	if count > h.count {
		count = h.count
	}

	// head is the next write position, so the newest value sits at head-1.
	size := len(h.data)
	start := (h.head - count + size) % size
	out := make([]float64, count)
	for i := range out {
		out[i] = h.data[(start+i)%size]
	}
	return out
}

// Count returns how many ratios are stored.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

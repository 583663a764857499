package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider is a simple in-memory implementation of Provider.
// It is concurrency-safe and suitable for tests, examples, and the batchrun summary.
// Instruments are created on demand by name and reused for the same name.
type BasicProvider struct {
	counters   instrumentSet[*BasicCounter]
	updowns    instrumentSet[*BasicUpDownCounter]
	histograms instrumentSet[*BasicHistogram]

	metaMu sync.RWMutex
	meta   map[string]InstrumentConfig
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{meta: make(map[string]InstrumentConfig)}
}

// Counter returns a monotonic counter instrument for the given name (created once).
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	return p.counters.get(name, func() *BasicCounter {
		p.remember(name, opts)
		return &BasicCounter{}
	})
}

// UpDownCounter returns an up/down counter instrument for the given name (created once).
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	return p.updowns.get(name, func() *BasicUpDownCounter {
		p.remember(name, opts)
		return &BasicUpDownCounter{}
	})
}

// Histogram returns a histogram instrument for the given name (created once).
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	return p.histograms.get(name, func() *BasicHistogram {
		p.remember(name, opts)
		return &BasicHistogram{}
	})
}

// Describe returns the metadata the instrument was created with.
func (p *BasicProvider) Describe(name string) (InstrumentConfig, bool) {
	p.metaMu.RLock()
	defer p.metaMu.RUnlock()
	cfg, ok := p.meta[name]
	return cfg, ok
}

func (p *BasicProvider) remember(name string, opts []InstrumentOption) {
	cfg := applyOptions(opts)
	p.metaMu.Lock()
	p.meta[name] = cfg
	p.metaMu.Unlock()
}

// instrumentSet is a name-indexed set of instruments of one kind.
type instrumentSet[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func (s *instrumentSet[T]) get(name string, create func() T) T {
	s.mu.RLock()
	v, ok := s.m[name]
	s.mu.RUnlock()
	if ok {
		return v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// re-check after acquiring write lock
	if v, ok = s.m[name]; ok {
		return v
	}
	if s.m == nil {
		s.m = make(map[string]T)
	}
	v = create()
	s.m[name] = v
	return v
}

// BasicCounter is a thread-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

// Add increments the counter by n.
func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a thread-safe up/down counter that also remembers its peak value.
type BasicUpDownCounter struct {
	val  atomic.Int64
	peak atomic.Int64
}

// Add adds n (positive or negative) to the current value.
func (u *BasicUpDownCounter) Add(n int64) {
	v := u.val.Add(n)
	for {
		p := u.peak.Load()
		if v <= p || u.peak.CompareAndSwap(p, v) {
			return
		}
	}
}

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// Peak returns the highest value observed so far.
func (u *BasicUpDownCounter) Peak() int64 { return u.peak.Load() }

// BasicHistogram is a thread-safe histogram that tracks count, sum, min, and max.
// It does not maintain buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// Record adds a measurement to the histogram.
func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// HistSnapshot is an immutable snapshot of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns a copy of the histogram state at the time of call.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}

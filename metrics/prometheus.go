package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider adapts Provider to a Prometheus registerer.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and
// histograms to prometheus.Histogram with the default buckets. Instrument attributes
// become constant labels.
type PrometheusProvider struct {
	reg prometheus.Registerer

	mu         sync.Mutex
	collectors map[string]prometheus.Collector
}

// NewPrometheusProvider registers instruments with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{reg: reg, collectors: make(map[string]prometheus.Collector)}
}

// Counter returns a Prometheus counter registered under name.
func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	c := p.register(name, func(cfg InstrumentConfig) prometheus.Collector {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Name: name, Help: help(name, cfg), ConstLabels: cfg.Attributes,
		})
	}, opts).(prometheus.Counter)
	return promCounter{c}
}

// UpDownCounter returns a Prometheus gauge registered under name.
func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	g := p.register(name, func(cfg InstrumentConfig) prometheus.Collector {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name, Help: help(name, cfg), ConstLabels: cfg.Attributes,
		})
	}, opts).(prometheus.Gauge)
	return promGauge{g}
}

// Histogram returns a Prometheus histogram registered under name.
func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	h := p.register(name, func(cfg InstrumentConfig) prometheus.Collector {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: name, Help: help(name, cfg), ConstLabels: cfg.Attributes, Buckets: prometheus.DefBuckets,
		})
	}, opts).(prometheus.Histogram)
	return promHistogram{h}
}

// register creates and registers the collector once per name. A collector already
// registered with reg by someone else is reused.
func (p *PrometheusProvider) register(
	name string, create func(InstrumentConfig) prometheus.Collector, opts []InstrumentOption,
) prometheus.Collector {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.collectors[name]; ok {
		return c
	}
	c := create(applyOptions(opts))
	if err := p.reg.Register(c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		c = are.ExistingCollector
	}
	p.collectors[name] = c
	return c
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

type promCounter struct{ c prometheus.Counter }

func (c promCounter) Add(n int64) { c.c.Add(float64(n)) }

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Add(n int64) { g.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h promHistogram) Record(v float64) { h.h.Observe(v) }

package metrics

import (
	"net/http"
	"strconv"
	"sync"

	reader "memwatch/internal/memory"
	"memwatch/internal/observable"
	"memwatch/internal/ranking"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memwatch"

// Exporter mirrors the reader's observables into prometheus collectors and
// counts sampling and listing failures.
type Exporter struct {
	registry *prometheus.Registry

	totalBytes    prometheus.Gauge
	usedBytes     prometheus.Gauge
	freeBytes     prometheus.Gauge
	utilization   prometheus.Gauge
	processBytes  *prometheus.GaugeVec
	sampleErrors  prometheus.Counter
	listingErrors *prometheus.CounterVec

	mu            sync.Mutex
	unsubscribers []func()
}

// NewExporter registers every collector on a private registry
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		totalBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_total_bytes",
			Help:      "Physical memory installed.",
		}),
		usedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_used_bytes",
			Help:      "Active, wired and compressed memory.",
		}),
		freeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_free_bytes",
			Help:      "Physical memory not counted as used.",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_utilization_ratio",
			Help:      "Used over total memory, between 0 and 1.",
		}),
		processBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "top_process_memory_bytes",
			Help:      "Memory footprint of the largest processes from the last listing.",
		}, []string{"rank", "pid", "command"}),
		sampleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_failures_total",
			Help:      "Memory counter queries that failed.",
		}),
		listingErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_failures_total",
			Help:      "Process listings that failed, by kind.",
		}, []string{"kind"}),
	}

	e.registry.MustRegister(
		e.totalBytes,
		e.usedBytes,
		e.freeBytes,
		e.utilization,
		e.processBytes,
		e.sampleErrors,
		e.listingErrors,
	)

	return e
}

// Attach subscribes the gauges to the given views. Detach undoes it.
func (e *Exporter) Attach(
	usage observable.View[reader.MemorySnapshot],
	topProcesses observable.View[[]ranking.ProcessUsage],
	ratio observable.View[float64],
) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.unsubscribers = append(e.unsubscribers,
		usage.Subscribe(e.ObserveUsage),
		topProcesses.Subscribe(e.ObserveProcesses),
		ratio.Subscribe(e.utilization.Set),
	)
}

// Detach drops every subscription made by Attach
func (e *Exporter) Detach() {
	e.mu.Lock()
	unsubscribers := e.unsubscribers
	e.unsubscribers = nil
	e.mu.Unlock()

	for _, unsubscribe := range unsubscribers {
		unsubscribe()
	}
}

// ObserveUsage updates the byte gauges
func (e *Exporter) ObserveUsage(snapshot reader.MemorySnapshot) {
	e.totalBytes.Set(snapshot.Total)
	e.usedBytes.Set(snapshot.Used)
	e.freeBytes.Set(snapshot.Free)
}

// ObserveProcesses replaces the per-process series with the latest listing
func (e *Exporter) ObserveProcesses(processes []ranking.ProcessUsage) {
	e.processBytes.Reset()
	for i, p := range processes {
		e.processBytes.WithLabelValues(strconv.Itoa(i+1), strconv.Itoa(p.PID), p.Command).Set(p.MemoryBytes)
	}
}

// SampleFailed counts a failed counter query
func (e *Exporter) SampleFailed(error) {
	e.sampleErrors.Inc()
}

// ListingFailed counts a failed listing, labelled by its kind
func (e *Exporter) ListingFailed(err error) {
	e.listingErrors.WithLabelValues(ranking.KindOf(err).String()).Inc()
}

// Registry returns the registry holding the exporter's collectors
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the prometheus exposition format
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus metrics for HTTP traffic, memory
// lifecycle events and storage operations.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msomdec/memory-gallery/internal/domain"
)

// Collector holds all metrics on a private registry, so several collectors
// can coexist in one test binary. A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	memoriesCreated prometheus.Counter
	memoriesDeleted prometheus.Counter

	storageOps      *prometheus.CounterVec
	storageDuration *prometheus.HistogramVec
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		memoriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_created_total",
			Help:      "Total number of memories created.",
		}),
		memoriesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_deleted_total",
			Help:      "Total number of memories deleted.",
		}),
		storageOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Total number of key-value storage operations.",
		}, []string{"operation", "outcome"}),
		storageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Key-value storage operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.memoriesCreated,
		c.memoriesDeleted,
		c.storageOps,
		c.storageDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) MemoryCreated() {
	if c != nil {
		c.memoriesCreated.Inc()
	}
}

func (c *Collector) MemoryDeleted() {
	if c != nil {
		c.memoriesDeleted.Inc()
	}
}

func (c *Collector) observeStorage(op string, start time.Time, err error) {
	c.storageOps.WithLabelValues(op, outcome(err)).Inc()
	c.storageDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

// WrapStore returns kv instrumented with storage metrics. A nil collector
// returns kv unchanged.
func (c *Collector) WrapStore(kv domain.KVStore) domain.KVStore {
	if c == nil {
		return kv
	}
	return &instrumentedStore{kv: kv, c: c}
}

type instrumentedStore struct {
	kv domain.KVStore
	c  *Collector
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (domain.Entry, error) {
	start := time.Now()
	entry, err := s.kv.Get(ctx, key)
	s.c.observeStorage("get", start, err)
	return entry, err
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.kv.Set(ctx, key, value)
	s.c.observeStorage("set", start, err)
	return err
}

func (s *instrumentedStore) CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	start := time.Now()
	version, err := s.kv.CompareAndSwap(ctx, key, value, expectedVersion)
	s.c.observeStorage("compare_and_swap", start, err)
	return version, err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.kv.Delete(ctx, key)
	s.c.observeStorage("delete", start, err)
	return err
}

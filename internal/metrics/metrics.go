// Package metrics exposes Prometheus collectors for HTTP traffic and the
// merchant cache.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus holds the service collectors registered against one registry.
type Prometheus struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	operations      *prometheus.CounterVec
}

// NewPrometheus creates and registers all collectors on a fresh registry.
func NewPrometheus(service string) *Prometheus {
	labels := prometheus.Labels{"service": service}

	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests in seconds",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "merchant_cache_hits_total",
				Help:        "Merchant cache hits by entry kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "merchant_cache_misses_total",
				Help:        "Merchant cache misses by entry kind",
				ConstLabels: labels,
			},
			[]string{"kind"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "merchant_operations_total",
				Help:        "Merchant service operations by result",
				ConstLabels: labels,
			},
			[]string{"operation", "result"},
		),
	}

	p.registry.MustRegister(
		p.requests,
		p.requestDuration,
		p.cacheHits,
		p.cacheMisses,
		p.operations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry returns the underlying registry, mainly for tests.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) RecordCacheHit(kind string) {
	p.cacheHits.WithLabelValues(kind).Inc()
}

func (p *Prometheus) RecordCacheMiss(kind string) {
	p.cacheMisses.WithLabelValues(kind).Inc()
}

func (p *Prometheus) RecordOperation(operation, result string) {
	p.operations.WithLabelValues(operation, result).Inc()
}

// Middleware records request count and latency labelled by route pattern.
func (p *Prometheus) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		statusStr := strconv.Itoa(status)

		p.requests.WithLabelValues(c.Method(), path, statusStr).Inc()
		p.requestDuration.WithLabelValues(c.Method(), path, statusStr).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}

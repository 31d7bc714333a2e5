package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/agbru/sinsum/internal/errors"
	"github.com/agbru/sinsum/internal/quadrature"
)

// Namespace prefixes every metric name.
const Namespace = "sinsum"

// Integration outcome labels.
const (
	StatusSuccess  = "success"
	StatusInvalid  = "invalid"
	StatusTimeout  = "timeout"
	StatusCanceled = "canceled"
	StatusError    = "error"
)

// durationBuckets spans sub-millisecond toy runs up to a minute.
var durationBuckets = prom.ExponentialBuckets(0.0005, 4, 10)

// Registry groups the collectors of one process. It owns its own
// prom.Registry so tests and repeated construction never collide with the
// global default registerer.
type Registry struct {
	reg *prom.Registry

	integrations   *prom.CounterVec
	duration       *prom.HistogramVec
	samples        prom.Counter
	lastValue      prom.Gauge
	lastAbsError   prom.Gauge
	activeRequests prom.Gauge
	requests       *prom.CounterVec
}

// NewRegistry creates a Registry with the integration collectors plus the
// standard Go runtime and process collectors.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		reg: prom.NewRegistry(),
		integrations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "integrations_total",
			Help:      "Total number of integrations by outcome.",
		}, []string{"status"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: Namespace,
			Name:      "integration_duration_seconds",
			Help:      "Duration of the parallel region of successful integrations.",
			Buckets:   durationBuckets,
		}, []string{"threads", "partition", "scheduler"}),
		samples: prom.NewCounter(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "samples_total",
			Help:      "Total number of series evaluations performed.",
		}),
		lastValue: prom.NewGauge(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_value",
			Help:      "Value of the most recent successful integration.",
		}),
		lastAbsError: prom.NewGauge(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_abs_error",
			Help:      "Absolute error of the most recent successful integration.",
		}),
		activeRequests: prom.NewGauge(prom.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: Namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	for _, c := range []prom.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.integrations, r.duration, r.samples, r.lastValue, r.lastAbsError,
		r.activeRequests, r.requests,
	} {
		if err := r.reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// ObserveIntegration records the outcome of one integration.
func (r *Registry) ObserveIntegration(res quadrature.Result, err error) {
	if r == nil {
		return
	}
	status := StatusLabel(err)
	r.integrations.WithLabelValues(status).Inc()
	if err != nil {
		return
	}
	r.duration.WithLabelValues(
		strconv.Itoa(res.Threads), res.Partition.String(), res.Scheduler.String(),
	).Observe(res.Elapsed.Seconds())
	r.samples.Add(float64(res.Steps))
	r.lastValue.Set(res.Value)
	r.lastAbsError.Set(res.AbsError())
}

// StatusLabel maps an integration error to its status label.
func StatusLabel(err error) string {
	switch code := apperrors.ExitCode(err); {
	case err == nil:
		return StatusSuccess
	case code == apperrors.ExitErrorConfig:
		return StatusInvalid
	case code == apperrors.ExitErrorTimeout:
		return StatusTimeout
	case code == apperrors.ExitErrorCanceled:
		return StatusCanceled
	default:
		return StatusError
	}
}

// IncrementActiveRequests marks the start of an HTTP request.
func (r *Registry) IncrementActiveRequests() { r.activeRequests.Inc() }

// DecrementActiveRequests marks the end of an HTTP request.
func (r *Registry) DecrementActiveRequests() { r.activeRequests.Dec() }

// ObserveRequest counts a finished HTTP request.
func (r *Registry) ObserveRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prom.Gatherer {
	return r.reg
}

// WriteTextfile writes the current metrics to path in the format read by the
// node_exporter textfile collector. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

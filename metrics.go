package main

import (
	"fmt"
	"net"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "servergeo"

type metricsLogger struct {
	dnsErrors      prometheus.Counter
	geoErrors      *prometheus.CounterVec
	located        *prometheus.CounterVec
	locateDuration *prometheus.HistogramVec
}

func (m *metricsLogger) DNSError(_ string, _ error) {
	m.dnsErrors.Inc()
}

func (m *metricsLogger) GeoError(_ net.IP, name string, _ error) {
	m.geoErrors.WithLabelValues(name).Inc()
}

func (m *metricsLogger) Located(result geolib.ServerLocationResult, elapsed time.Duration) {
	status := "ok"
	if !result.OK() {
		status = "failed"
	}

	m.located.WithLabelValues(status, string(result.ErrorKind), string(result.Source)).Inc()
	m.locateDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func newMetricsLogger(registerer prometheus.Registerer) (*metricsLogger, error) {
	rv := &metricsLogger{
		dnsErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dns_errors_total",
			Help:      "Number of domains which had at least one failed DNS query.",
		}),
		geoErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "geo_errors_total",
			Help:      "Number of failed geolocation lookups.",
		}, []string{"provider"}),
		located: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "located_total",
			Help:      "Number of locate invocations.",
		}, []string{"status", "error_kind", "source"}),
		locateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "locate_duration_seconds",
			Help:      "Duration of locate invocations.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"status"}),
	}

	for _, v := range []prometheus.Collector{rv.dnsErrors, rv.geoErrors, rv.located, rv.locateDuration} {
		if err := registerer.Register(v); err != nil {
			return nil, fmt.Errorf("cannot register a metric: %w", err)
		}
	}

	return rv, nil
}

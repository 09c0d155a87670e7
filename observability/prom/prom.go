// Package prom exports the server's Observer events as Prometheus
// metrics.
package prom

import (
	"net/http"

	"github.com/duskbyte/filedrop/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a fresh Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler returns a Prometheus HTTP handler bound to the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Observer exports connection and protocol-outcome metrics to Prometheus.
type Observer struct {
	connGauge       prometheus.Gauge
	connsTotal      prometheus.Counter
	registerTotal   *prometheus.CounterVec
	reconnectTotal  *prometheus.CounterVec
	uploadsTotal    prometheus.Counter
	crcOutcomeTotal *prometheus.CounterVec
}

// NewObserver registers server metrics on the registry.
func NewObserver(reg *prometheus.Registry) *Observer {
	o := &Observer{
		connGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "filedrop_connections_active",
			Help: "Current number of open connections.",
		}),
		connsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filedrop_connections_total",
			Help: "Total connections accepted.",
		}),
		registerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filedrop_register_total",
			Help: "Register attempts by outcome.",
		}, []string{"outcome"}),
		reconnectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filedrop_reconnect_total",
			Help: "Reconnect attempts by outcome.",
		}, []string{"outcome"}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filedrop_uploads_total",
			Help: "Uploads whose CRC-confirmation sub-dialog ended without error (code 900, 901 or 902).",
		}),
		crcOutcomeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filedrop_crc_outcome_total",
			Help: "CRC-confirmation sub-dialog outcomes.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		o.connGauge,
		o.connsTotal,
		o.registerTotal,
		o.reconnectTotal,
		o.uploadsTotal,
		o.crcOutcomeTotal,
	)
	return o
}

func (o *Observer) ConnOpened() {
	o.connsTotal.Inc()
	o.connGauge.Inc()
}

func (o *Observer) ConnClosed() {
	o.connGauge.Dec()
}

func (o *Observer) Registered(ok bool) {
	o.registerTotal.WithLabelValues(outcomeLabel(ok)).Inc()
}

func (o *Observer) Reconnected(ok bool) {
	o.reconnectTotal.WithLabelValues(outcomeLabel(ok)).Inc()
}

func (o *Observer) Uploaded() {
	o.uploadsTotal.Inc()
}

func (o *Observer) CRCResult(outcome observability.CRCOutcome) {
	o.crcOutcomeTotal.WithLabelValues(string(outcome)).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "rejected"
}

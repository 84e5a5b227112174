// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for socket activity.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Error kinds used as the "kind" label of SocketErrors.
const (
	ErrorKindEOF   = "eof"
	ErrorKindOS    = "os"
	ErrorKindOther = "other"
)

// Metrics holds the socket collectors.
type Metrics struct {
	Accepted      prometheus.Counter
	Active        prometheus.Gauge
	BytesReceived prometheus.Counter
	BytesSent     prometheus.Counter
	SocketErrors  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nsock",
			Name:      "connections_accepted_total",
			Help:      "Connections accepted by listening sockets.",
		}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nsock",
			Name:      "connections_active",
			Help:      "Connected sockets not yet ended.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nsock",
			Name:      "bytes_received_total",
			Help:      "Bytes read from connected sockets.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nsock",
			Name:      "bytes_sent_total",
			Help:      "Bytes written to connected sockets.",
		}),
		SocketErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nsock",
			Name:      "socket_errors_total",
			Help:      "Errors reported to socket error callbacks.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{m.Accepted, m.Active, m.BytesReceived, m.BytesSent, m.SocketErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveError counts one socket error of kind.
func (m *Metrics) ObserveError(kind string) {
	m.SocketErrors.WithLabelValues(kind).Inc()
}

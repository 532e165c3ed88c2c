// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package natpunch

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

const metricsNamespace = "natpunch"

type datagramKind int

const (
	datagramConnRequest datagramKind = iota
	datagramWrongTransaction
	datagramBindingSuccess
	datagramBindingError
	datagramIgnored
	datagramReceiveFailure
	datagramKinds
)

var datagramLabels = [datagramKinds]string{ //nolint:gochecknoglobals
	datagramConnRequest:      "conn_request",
	datagramWrongTransaction: "wrong_transaction",
	datagramBindingSuccess:   "binding_success",
	datagramBindingError:     "binding_error",
	datagramIgnored:          "ignored",
	datagramReceiveFailure:   "receive_failure",
}

// Metrics counts what a session does. A nil *Metrics records nothing.
type Metrics struct {
	datagrams     [datagramKinds]prometheus.Counter
	keepalives    prometheus.Counter
	rebinds       prometheus.Counter
	notifications prometheus.Counter
	spawnFailures prometheus.Counter
	mapped        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	datagrams := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "datagrams_total",
		Help:      "Datagrams received, by classification.",
	}, []string{"kind"})
	m := &Metrics{
		keepalives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "keepalives_total",
			Help:      "Keepalive deadlines fired.",
		}),
		rebinds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rebinds_total",
			Help:      "Rebinds after a broken connection.",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Notifier invocations started.",
		}),
		spawnFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_failures_total",
			Help:      "Notifier invocations that could not be started.",
		}),
		mapped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "mapped",
			Help:      "1 while the session holds a mapped address.",
		}),
	}
	// Resolve labels up front so the receive path does not allocate.
	for kind, label := range datagramLabels {
		m.datagrams[kind] = datagrams.WithLabelValues(label)
	}

	err := multierr.Combine(
		reg.Register(datagrams),
		reg.Register(m.keepalives),
		reg.Register(m.rebinds),
		reg.Register(m.notifications),
		reg.Register(m.spawnFailures),
		reg.Register(m.mapped),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) datagram(kind datagramKind) {
	if m == nil {
		return
	}
	m.datagrams[kind].Inc()
}

func (m *Metrics) keepalive() {
	if m == nil {
		return
	}
	m.keepalives.Inc()
}

func (m *Metrics) rebind() {
	if m == nil {
		return
	}
	m.rebinds.Inc()
}

func (m *Metrics) notification(started bool) {
	if m == nil {
		return
	}
	if started {
		m.notifications.Inc()
	} else {
		m.spawnFailures.Inc()
	}
}

func (m *Metrics) setMapped(mapped bool) {
	if m == nil {
		return
	}
	if mapped {
		m.mapped.Set(1)
	} else {
		m.mapped.Set(0)
	}
}

// Package metrics содержит метрики Prometheus сервиса учёта абонементов.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics хранит коллекторы сервиса.
type Metrics struct {
	registry *prometheus.Registry

	paymentsRecorded   *prometheus.CounterVec
	paymentAmount      *prometheus.CounterVec
	statusComputations *prometheus.CounterVec
	membershipsSwept   *prometheus.CounterVec
}

// New создаёт метрики в собственном реестре вместе со стандартными коллекторами процесса и Go.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_billing_payments_recorded_total",
			Help: "Payment rows recorded by allocation kind.",
		}, []string{"kind"}),
		paymentAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_billing_payment_amount_total",
			Help: "Sum of recorded payment amounts by allocation kind.",
		}, []string{"kind"}),
		statusComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_billing_status_computations_total",
			Help: "Payment status computations by outcome.",
		}, []string{"outcome"}),
		membershipsSwept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gym_billing_membership_status_transitions_total",
			Help: "Membership status transitions applied by the status sweep.",
		}, []string{"to"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.paymentsRecorded,
		m.paymentAmount,
		m.statusComputations,
		m.membershipsSwept,
	)

	return m
}

// PaymentRecorded учитывает записанную часть платежа вида kind (debt или advance).
func (m *Metrics) PaymentRecorded(kind string, amount float64) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(kind).Inc()
	m.paymentAmount.WithLabelValues(kind).Add(amount)
}

// StatusComputed учитывает расчёт состояния оплаты.
func (m *Metrics) StatusComputed(upToDate bool) {
	if m == nil {
		return
	}
	outcome := "owing"
	if upToDate {
		outcome = "up_to_date"
	}
	m.statusComputations.WithLabelValues(outcome).Inc()
}

// MembershipsSwept учитывает n абонементов, переведённых в статус to.
func (m *Metrics) MembershipsSwept(to string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.membershipsSwept.WithLabelValues(to).Add(float64(n))
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

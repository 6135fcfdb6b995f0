package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - счётчики шлюза. nil-безопасен: методы ничего не делают на nil.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	AlertsCurrent    *prometheus.GaugeVec
	AlertSourceFails *prometheus.CounterVec
	IoTMessages      *prometheus.CounterVec
	WSClients        prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Запросы к REST backend по ресурсу, методу и коду ответа.",
		}, []string{"resource", "method", "code"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Длительность запросов к REST backend.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
		AlertsCurrent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "alerts",
			Name:      "current",
			Help:      "Количество алертов в последней ленте по важности.",
		}, []string{"severity"}),
		AlertSourceFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "alerts",
			Name:      "source_failures_total",
			Help:      "Ошибки источников ленты алертов.",
		}, []string{"source"}),
		IoTMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "iot",
			Name:      "messages_total",
			Help:      "Сообщения, полученные из IoT namespace.",
		}, []string{"event"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Подключённые браузерные websocket-клиенты.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.UpstreamRequests,
			m.UpstreamDuration,
			m.AlertsCurrent,
			m.AlertSourceFails,
			m.IoTMessages,
			m.WSClients,
		)
	}
	return m
}

func (m *Metrics) ObserveUpstream(resource, method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(resource, method, code).Inc()
	m.UpstreamDuration.WithLabelValues(resource, method).Observe(seconds)
}

func (m *Metrics) SetAlerts(bySeverity map[string]int) {
	if m == nil {
		return
	}
	for _, sev := range []string{"high", "medium", "low"} {
		m.AlertsCurrent.WithLabelValues(sev).Set(float64(bySeverity[sev]))
	}
}

func (m *Metrics) AlertSourceFailed(source string) {
	if m == nil {
		return
	}
	m.AlertSourceFails.WithLabelValues(source).Inc()
}

func (m *Metrics) IoTMessage(event string) {
	if m == nil {
		return
	}
	m.IoTMessages.WithLabelValues(event).Inc()
}

func (m *Metrics) WSClientDelta(delta float64) {
	if m == nil {
		return
	}
	m.WSClients.Add(delta)
}

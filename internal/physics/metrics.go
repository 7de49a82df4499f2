package physics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics Prometheus-метрики очереди физики
type Metrics struct {
	scheduledTotal prometheus.Counter
	dedupedTotal   prometheus.Counter
	processedTotal prometheus.Counter
	pending        prometheus.Gauge
	tickDuration   prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется глобальный регистр Prometheus.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		scheduledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "scheduled_total",
			Help:      "Координаты, добавленные в очередь физики.",
		}),
		dedupedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "deduplicated_total",
			Help:      "Повторные планирования уже ожидающих координат.",
		}),
		processedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "processed_total",
			Help:      "Координаты, переданные обработчику.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "physics",
			Name:      "pending",
			Help:      "Координаты, ожидающие обработки.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "physics",
			Name:      "tick_duration_seconds",
			Help:      "Длительность обработки одного тика.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	reg.MustRegister(m.scheduledTotal, m.dedupedTotal, m.processedTotal, m.pending, m.tickDuration)
	return m
}

func (m *Metrics) scheduled(added bool, pending int) {
	if m == nil {
		return
	}
	if added {
		m.scheduledTotal.Inc()
	} else {
		m.dedupedTotal.Inc()
	}
	m.pending.Set(float64(pending))
}

func (m *Metrics) processed(n, pending int, d time.Duration) {
	if m == nil {
		return
	}
	m.processedTotal.Add(float64(n))
	m.pending.Set(float64(pending))
	m.tickDuration.Observe(d.Seconds())
}

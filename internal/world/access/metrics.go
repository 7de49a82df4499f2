package access

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты операций для метки result
const (
	resultApplied           = "applied"
	resultPreconditionFail  = "precondition_failed"
	resultInvalidArgument   = "invalid_argument"
	resultInvalidIdentifier = "invalid_identifier"
)

// Metrics Prometheus-метрики фасада
type Metrics struct {
	ops         *prometheus.CounterVec
	sideEffects *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется глобальный регистр Prometheus.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blockaccess",
			Name:      "operations_total",
			Help:      "Операции фасада по типу и результату.",
		}, []string{"op", "result"}),
		sideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blockaccess",
			Name:      "side_effects_total",
			Help:      "Запущенные побочные эффекты: physics или notify.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.ops, m.sideEffects)
	return m
}

func (m *Metrics) observe(op string, ok bool, err error) {
	if m == nil {
		return
	}

	result := resultApplied
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		result = resultInvalidIdentifier
	case err != nil:
		result = resultInvalidArgument
	case !ok:
		result = resultPreconditionFail
	}
	m.ops.WithLabelValues(op, result).Inc()
}

func (m *Metrics) sideEffect(kind string, n int) {
	if m == nil {
		return
	}
	m.sideEffects.WithLabelValues(kind).Add(float64(n))
}

package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"photoapi/internal/model"
)

// Metrics counts bulk operations and per-item failures. A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations   *prometheus.CounterVec
	itemFailures *prometheus.CounterVec
}

// NewMetrics registers the bulk operation collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photoapi_bulk_operations_total",
				Help: "Bulk download/delete operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		itemFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photoapi_bulk_item_failures_total",
				Help: "Per-photo failures inside bulk operations, by stage.",
			},
			[]string{"stage"},
		),
	}
	for _, c := range []prometheus.Collector{m.operations, m.itemFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) operation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) itemFailure(stage model.Stage) {
	if m == nil {
		return
	}
	m.itemFailures.WithLabelValues(string(stage)).Inc()
}

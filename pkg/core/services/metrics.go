//nolint:gochecknoglobals
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "volunhub",
		Name:      "transitions_total",
		Help:      "State transitions performed, by entity and target state",
	}, []string{"entity", "to"})

	capacityRejectionsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "volunhub",
		Name:      "capacity_rejections_total",
		Help:      "Approvals rejected because the shift was full",
	})

	pointsGrantedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "volunhub",
		Name:      "points_delta_total",
		Help:      "Absolute points moved through the ledger, by direction",
	}, []string{"direction"})
)

func observePointsDelta(delta int) {
	if delta >= 0 {
		pointsGrantedMetric.WithLabelValues("granted").Add(float64(delta))
	} else {
		pointsGrantedMetric.WithLabelValues("retracted").Add(float64(-delta))
	}
}

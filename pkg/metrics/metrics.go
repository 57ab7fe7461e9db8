package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "omnipos_variation"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Storefront selections resolved, by outcome (matched, fallback)",
		},
		[]string{"outcome"},
	)

	SavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Variation grid saves, by result (ok, validation, failure)",
		},
		[]string{"result"},
	)

	RowsChangedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_changed_total",
			Help:      "Variation rows written by grid saves",
		},
		[]string{"op"},
	)

	StockReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_reservations_total",
			Help:      "Stock reservation attempts, by result",
		},
		[]string{"result"},
	)

	MalformedRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_rows_total",
			Help:      "Persisted variation rows skipped because option_ids could not be decoded",
		},
	)
)

func RecordResolution(matched bool) {
	if matched {
		ResolutionsTotal.WithLabelValues("matched").Inc()
		return
	}
	ResolutionsTotal.WithLabelValues("fallback").Inc()
}

func RecordSave(result string, created, updated, deleted int) {
	SavesTotal.WithLabelValues(result).Inc()
	RowsChangedTotal.WithLabelValues("create").Add(float64(created))
	RowsChangedTotal.WithLabelValues("update").Add(float64(updated))
	RowsChangedTotal.WithLabelValues("delete").Add(float64(deleted))
}

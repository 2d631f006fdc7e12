package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SeatsCommittedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "seats_committed_total", Help: "Seats committed through accepted requests"})
	SeatsReleasedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "seats_released_total", Help: "Seats released by rejections and cancellations"})
	CapacityConflicts   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "capacity_conflicts_total", Help: "Accepts refused because the seat pool was exhausted"})

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "carpool", Name: "notifications_dispatched_total", Help: "Notifications created per event type"},
		[]string{"event"},
	)
	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{Namespace: "carpool", Name: "notifications_dropped_total", Help: "Notification deliveries that failed and were discarded"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "carpool", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "carpool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

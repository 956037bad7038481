package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsApproved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nomorebugs_payments_approved_total",
			Help: "Total number of approved payments by match outcome",
		},
		[]string{"match"},
	)

	JobsAssigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nomorebugs_jobs_assigned_total",
			Help: "Total number of worker assignments by kind",
		},
		[]string{"kind"},
	)

	JobsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nomorebugs_jobs_dispatched_total",
			Help: "Total number of confirmed dispatches",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nomorebugs_notifications_total",
			Help: "Total number of dispatch notifications by recipient, channel and result",
		},
		[]string{"recipient", "channel", "result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nomorebugs_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nomorebugs_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BoardClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nomorebugs_dispatch_board_clients",
			Help: "Number of connected dispatch board websockets",
		},
	)
)

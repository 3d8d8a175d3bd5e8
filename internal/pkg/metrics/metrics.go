// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VersionConflicts counts optimistic-concurrency conflicts by aggregate type
	VersionConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_version_conflicts_total",
		Help: "Optimistic concurrency conflicts by aggregate",
	}, []string{"aggregate"})

	// RatingRecomputes counts rating recomputations by result
	RatingRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_rating_recomputes_total",
		Help: "Product rating recomputations by result",
	}, []string{"result"})

	// OrdersCreated counts persisted orders
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_orders_created_total",
		Help: "Orders persisted",
	})

	// OrderNumberCollisions counts order numbers rejected by the unique index
	OrderNumberCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_order_number_collisions_total",
		Help: "Generated order numbers that collided with an existing order",
	})

	// OrderTransitions counts order status changes by target status
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_order_transitions_total",
		Help: "Order status transitions by target status",
	}, []string{"status"})

	// JournalOperations counts journaled cross-aggregate operations by kind and outcome
	JournalOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_journal_operations_total",
		Help: "Journaled operations by kind and outcome",
	}, []string{"kind", "outcome"})

	// CacheLookups counts category cache lookups by result
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Category cache lookups by result",
	}, []string{"result"})

	// HTTPRequestDuration tracks request latency by route and status
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

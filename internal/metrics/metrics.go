package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commandes_orders_created_total",
		Help: "Total number of orders successfully created.",
	})

	OrdersUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commandes_orders_updated_total",
		Help: "Total number of order updates successfully written.",
	})

	SnapshotsDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commandes_snapshots_delivered_total",
		Help: "Total number of full snapshots delivered to subscribers.",
	})

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "commandes_active_subscriptions",
		Help: "Current number of open live order subscriptions.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commandes_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	OutboxEventsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commandes_outbox_events_published_total",
		Help: "Total number of order events published to the broker.",
	})
)

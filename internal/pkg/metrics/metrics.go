// Package metrics holds the Prometheus collectors shared by the bot's components.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SpamVerdicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workshop",
		Subsystem: "antispam",
		Name:      "verdicts_total",
		Help:      "Limiter decisions by verdict.",
	}, []string{"verdict"})

	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workshop",
		Name:      "notifications_total",
		Help:      "Notification delivery attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workshop",
		Name:      "orders_created_total",
		Help:      "Orders committed by the intake conversation.",
	})

	FeedbackRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "workshop",
		Name:      "feedback_requests_total",
		Help:      "Rating prompts sent by the feedback sweep.",
	})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{SpamVerdicts, Notifications, OrdersCreated, FeedbackRequests} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

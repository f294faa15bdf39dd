package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accessdesk_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// LifecycleDecisions counts account lifecycle outcomes by operation and result.
	LifecycleDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "accessdesk_lifecycle_decisions_total",
		Help: "Total account lifecycle decisions by operation and result",
	}, []string{"operation", "result"})

	// MessagesSent counts messages accepted by the messaging engine.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "accessdesk_messages_sent_total",
		Help: "Total messages accepted by the messaging engine",
	})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The underlying collectors register on the default registry, so the
// middleware is created once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware returns the HTTP middleware that records request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}

package api

import (
	"net/http"
	"order-lookup-service/internal/api/handlers"
	"order-lookup-service/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
func NewRouter(svc *services.LookupService, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Catalog: svc.Catalog}
	orderHandler := &handlers.OrderHandler{Service: svc}
	deliveryHandler := &handlers.DeliveryHandler{Service: svc}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/orders/search", orderHandler.Search)
	mux.HandleFunc("/deliveries", deliveryHandler.Deliveries)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	routes := map[string]struct{}{
		"/health":        {},
		"/orders/search": {},
		"/deliveries":    {},
		"/metrics":       {},
	}

	return requestIDMiddleware(loggingMiddleware(logger, svc.Metrics, routes, mux))
}

package main

import (
	"github.com/gin-gonic/gin"

	"crm-simulator/internal/httpapi"
	"crm-simulator/internal/observability"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, metrics *observability.Metrics) {
	r.GET("/health", h.Health)

	// Customer records: seeded at startup, field updates only.
	customers := r.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.GET("/:customer_id", h.GetCustomer)
		customers.PATCH("/:customer_id", h.UpdateCustomer)
		customers.POST("/:customer_id/call-erp", h.CallERP)
	}

	// Outbound webhook target configuration.
	r.POST("/webhook/config", h.SetWebhookConfig)

	// Inspection surface.
	r.GET("/state", h.GetState)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

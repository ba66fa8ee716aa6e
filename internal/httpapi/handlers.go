package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crm-simulator/internal/customer"
	"crm-simulator/internal/state"
	"crm-simulator/internal/webhook"
	"crm-simulator/pkg/logger"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Customers *customer.Service
	Settings  *webhook.Settings
	State     *state.Service
}

const customerNotFound = "Customer not found"

func (h Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Customers ---

func (h Handlers) ListCustomers(c *gin.Context) {
	if h.Customers == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "customers not configured"})
		return
	}
	out, err := h.Customers.List(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing customers failed"})
		return
	}
	if out == nil {
		out = []customer.Customer{}
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) GetCustomer(c *gin.Context) {
	if h.Customers == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "customers not configured"})
		return
	}
	out, err := h.Customers.Get(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": customerNotFound})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "customer lookup failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateCustomer applies a partial update and fires the ERP webhook.
// Webhook delivery failures never surface here; once the update itself
// is valid the caller always gets the merged record.
func (h Handlers) UpdateCustomer(c *gin.Context) {
	if h.Customers == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "customers not configured"})
		return
	}
	var req customer.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Customers.Update(c.Request.Context(), c.Param("customer_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, customer.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": customerNotFound})
		case errors.Is(err, customer.ErrInvalidPaymentTerm):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CallERP(c *gin.Context) {
	if h.Customers == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "customers not configured"})
		return
	}
	out, err := h.Customers.CallERP(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": customerNotFound})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call-erp failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Webhook configuration ---

type webhookConfigRequest struct {
	WebhookURL string `json:"webhook_url" binding:"required,http_url"`
}

// SetWebhookConfig replaces the process-wide webhook URL wholesale.
// Reachability is deliberately not validated.
func (h Handlers) SetWebhookConfig(c *gin.Context) {
	if h.Settings == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "settings not configured"})
		return
	}
	var req webhookConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "webhook_url must be an absolute http(s) url"})
		return
	}
	url := strings.TrimSpace(req.WebhookURL)
	h.Settings.Set(url)
	logger.FromGin(c).Info("webhook configuration updated", "webhook_url", url)
	c.JSON(http.StatusOK, gin.H{"webhook_url": url})
}

// --- State ---

func (h Handlers) GetState(c *gin.Context) {
	if h.State == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "state not configured"})
		return
	}
	snap, err := h.State.Snapshot(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "state snapshot failed"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

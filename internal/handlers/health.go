package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
)

const serviceName = "checkout-service"

var startTime = time.Now()

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Ready handles GET /ready
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(gin.H, len(h.readiness))
	ready := true
	for _, rc := range h.readiness {
		if err := rc.Check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", logging.Fields{
				"check": rc.Name,
				"error": err.Error(),
			})
			checks[rc.Name] = err.Error()
			ready = false
			continue
		}
		checks[rc.Name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"service": serviceName,
			"checks":  checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": serviceName,
		"checks":  checks,
	})
}

// Live handles GET /live
func (h *Handlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// Version handles GET /version
func (h *Handlers) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":    "1.0.0",
		"service":    serviceName,
		"go_version": runtime.Version(),
		"started_at": startTime.Format(time.RFC3339),
	})
}

// Debug handles GET /debug
func (h *Handlers) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features": gin.H{
			"enable_order_events":     h.config.Features.EnableOrderEvents,
			"enable_redis_sessions":   h.config.Features.EnableRedisSessions,
			"enable_payment_consumer": h.config.Features.EnablePaymentConsumer,
			"enable_notifications":    h.config.Features.EnableNotifications,
		},
		"checkout": gin.H{
			"currency":         h.config.Checkout.Currency,
			"courier_fee":      h.config.Checkout.CourierFee,
			"transfer_rate":    h.config.Checkout.TransferDiscountRate,
			"discount_policy":  h.config.Checkout.DiscountPolicy,
			"blur_debounce_ms": h.config.Checkout.BlurDebounce.Milliseconds(),
		},
	})
}

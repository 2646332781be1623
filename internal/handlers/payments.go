package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
)

// ValidateCoupon handles GET /api/validate-coupon?code=&email=&subtotal=
func (h *Handlers) ValidateCoupon(c *gin.Context) {
	subtotal := decimal.Zero
	if raw := c.Query("subtotal"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "message": "invalid subtotal"})
			return
		}
		subtotal = parsed
	}

	res, err := h.couponService.Check(c.Request.Context(), c.Query("code"), c.Query("email"), subtotal)
	if err != nil {
		h.metrics.CouponValidation("error")
		c.JSON(http.StatusBadGateway, gin.H{
			"valid":   false,
			"message": "could not validate the coupon, try again later",
		})
		return
	}

	if res.Valid {
		h.metrics.CouponValidation("valid")
	} else {
		h.metrics.CouponValidation("invalid")
	}
	c.JSON(http.StatusOK, res)
}

// PaymentReturn handles GET /pay/:id, where the payment provider sends the
// customer back with ?status= or ?collection_status=.
func (h *Handlers) PaymentReturn(c *gin.Context) {
	orderID := c.Param("id")
	status := c.Query("status")
	if status == "" {
		status = c.Query("collection_status")
	}

	ret, err := h.paymentService.HandleReturn(c.Request.Context(), orderID, status)
	if err != nil {
		h.logger.Error("Payment return failed", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ret)
}

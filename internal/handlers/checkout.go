package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/view"
)

type createSessionRequest struct {
	Items []service.CartLineInput `json:"items" binding:"required,min=1,dive"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
	Seq  int64  `json:"seq"`
}

// CreateSession handles POST /api/checkout/sessions
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := h.checkoutService.CreateSession(c.Request.Context(), req.Items)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.renderer.Render(snap))
}

// GetSession handles GET /api/checkout/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	snap, err := h.checkoutService.GetSession(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, snap, err)
}

// UpdateField handles POST /api/checkout/sessions/:id/fields
func (h *Handlers) UpdateField(c *gin.Context) {
	var req service.FieldUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := h.checkoutService.UpdateField(c.Request.Context(), c.Param("id"), req)
	h.respond(c, http.StatusOK, snap, err)
}

// ActivateSection handles POST /api/checkout/sessions/:id/sections/:section/activate
func (h *Handlers) ActivateSection(c *gin.Context) {
	section := models.SectionName(c.Param("section"))
	snap, err := h.checkoutService.ActivateSection(c.Request.Context(), c.Param("id"), section)
	h.respond(c, http.StatusOK, snap, err)
}

// ContinueSection handles POST /api/checkout/sessions/:id/sections/:section/continue
func (h *Handlers) ContinueSection(c *gin.Context) {
	section := models.SectionName(c.Param("section"))
	snap, err := h.checkoutService.ContinueSection(c.Request.Context(), c.Param("id"), section)
	h.respond(c, http.StatusOK, snap, err)
}

// ApplyCoupon handles POST /api/checkout/sessions/:id/coupon
func (h *Handlers) ApplyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	snap, err := h.checkoutService.ApplyCoupon(c.Request.Context(), c.Param("id"), req.Code, req.Seq)
	h.respond(c, http.StatusOK, snap, err)
}

// Quote handles POST /api/checkout/quote
func (h *Handlers) Quote(c *gin.Context) {
	var req service.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.checkoutService.Quote(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	code := ""
	if res.Coupon != nil && res.Coupon.Valid {
		code = res.Coupon.Code
	}
	c.JSON(http.StatusOK, gin.H{
		"totals": view.Totals(res.Totals, code),
		"coupon": res.Coupon,
	})
}

// Provinces handles GET /api/shipping/provinces
func (h *Handlers) Provinces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provinces": view.ProvinceOptions(h.checkoutService.Provinces()),
	})
}

// SubmitCheckout handles POST /checkout/:id/submit. It accepts a plain form
// post and answers with a 303 to the payment page.
func (h *Handlers) SubmitCheckout(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	form := make(models.FormValues)
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			form[key] = values[0]
		}
	}

	snap, err := h.checkoutService.Submit(c.Request.Context(), c.Param("id"), form)
	if err == nil && snap != nil && snap.Placed != nil {
		c.Redirect(http.StatusSeeOther, snap.Placed.RedirectURL)
		return
	}
	h.respond(c, http.StatusOK, snap, err)
}

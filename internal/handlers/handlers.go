package handlers

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/view"
)

// ReadinessCheck is a dependency probed by GET /ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handlers holds all HTTP handlers for the checkout service.
type Handlers struct {
	checkoutService *service.CheckoutService
	couponService   *service.CouponService
	paymentService  *service.PaymentService
	renderer        *view.Renderer
	metrics         *metrics.CheckoutMetrics
	readiness       []ReadinessCheck
	config          *config.Config
	logger          *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	checkoutService *service.CheckoutService,
	couponService *service.CouponService,
	paymentService *service.PaymentService,
	renderer *view.Renderer,
	m *metrics.CheckoutMetrics,
	cfg *config.Config,
	readiness ...ReadinessCheck,
) *Handlers {
	return &Handlers{
		checkoutService: checkoutService,
		couponService:   couponService,
		paymentService:  paymentService,
		renderer:        renderer,
		metrics:         m,
		readiness:       readiness,
		config:          cfg,
		logger:          logging.NewLoggerV2("handlers"),
	}
}

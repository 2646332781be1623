package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/metrics"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	metrics    *metrics.CheckoutMetrics
	httpServer *http.Server
	logger     *logging.LoggerV2
}

func New(h *handlers.Handlers, cfg *config.Config, m *metrics.CheckoutMetrics) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestID(), handlers.RequestLogger(), m.Middleware())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		metrics:  m,
		logger:   logging.NewLoggerV2("server"),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/debug", s.handlers.Debug)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api")
	{
		sessions := api.Group("/checkout/sessions")
		sessions.POST("", s.handlers.CreateSession)
		sessions.GET("/:id", s.handlers.GetSession)
		sessions.POST("/:id/fields", s.handlers.UpdateField)
		sessions.POST("/:id/sections/:section/activate", s.handlers.ActivateSection)
		sessions.POST("/:id/sections/:section/continue", s.handlers.ContinueSection)
		sessions.POST("/:id/coupon", s.handlers.ApplyCoupon)

		api.POST("/checkout/quote", s.handlers.Quote)
		api.GET("/shipping/provinces", s.handlers.Provinces)
		api.GET("/validate-coupon", s.handlers.ValidateCoupon)
	}

	s.router.POST("/checkout/:id/submit", s.handlers.SubmitCheckout)
	s.router.GET("/pay/:id", s.handlers.PaymentReturn)
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

// Shutdown may run before Start; a later Start then returns http.ErrServerClosed.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

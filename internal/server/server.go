package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/dukaan/internal/assistant"
	"github.com/smallbiznis/dukaan/internal/config"
	customerdomain "github.com/smallbiznis/dukaan/internal/customer/domain"
	inventorydomain "github.com/smallbiznis/dukaan/internal/inventory/domain"
	invoicedomain "github.com/smallbiznis/dukaan/internal/invoice/domain"
	orderdomain "github.com/smallbiznis/dukaan/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	Log *zap.Logger
}

func NewEngine(p EngineParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(p.Log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	customerSvc  customerdomain.Service
	inventorySvc inventorydomain.Service
	orderSvc     orderdomain.Service
	invoiceSvc   invoicedomain.Service
	assistantSvc *assistant.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	CustomerSvc  customerdomain.Service
	InventorySvc inventorydomain.Service
	OrderSvc     orderdomain.Service
	InvoiceSvc   invoicedomain.Service
	AssistantSvc *assistant.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		customerSvc:  p.CustomerSvc,
		inventorySvc: p.InventorySvc,
		orderSvc:     p.OrderSvc,
		invoiceSvc:   p.InvoiceSvc,
		assistantSvc: p.AssistantSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/v1", OwnerContext())

	customers := api.Group("/customers")
	customers.POST("", s.createCustomer)
	customers.GET("", s.listCustomers)
	customers.GET("/:id", s.getCustomer)
	customers.DELETE("/:id", s.deactivateCustomer)

	products := api.Group("/products")
	products.POST("", s.createProduct)
	products.GET("", s.listProducts)
	products.GET("/:id", s.getProduct)
	products.PUT("/:id/stock", s.setStockLevel)
	products.POST("/:id/stock/adjust", s.adjustStock)

	orders := api.Group("/orders")
	orders.POST("", s.createOrder)
	orders.GET("", s.listOrders)
	orders.GET("/:id", s.getOrder)
	orders.PUT("/:id/status", s.transitionOrderStatus)
	orders.POST("/:id/cancel", s.cancelOrder)
	orders.POST("/:id/invoice", s.createInvoiceFromOrder)

	invoices := api.Group("/invoices")
	invoices.POST("", s.createInvoice)
	invoices.GET("", s.listInvoices)
	invoices.GET("/:id", s.getInvoice)
	invoices.POST("/:id/payments", s.recordPayment)

	api.POST("/assistant/ask", s.askAssistant)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

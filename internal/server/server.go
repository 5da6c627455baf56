package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	aidomain "github.com/freshmart/storefront/internal/ai/domain"
	"github.com/freshmart/storefront/internal/ai/registry"
	chatdomain "github.com/freshmart/storefront/internal/chat/domain"
	"github.com/freshmart/storefront/internal/config"
	"github.com/freshmart/storefront/internal/notify"
	obslogger "github.com/freshmart/storefront/internal/observability/logger"
	obsmetrics "github.com/freshmart/storefront/internal/observability/metrics"
	obstracing "github.com/freshmart/storefront/internal/observability/tracing"
	orderdomain "github.com/freshmart/storefront/internal/order/domain"
	productdomain "github.com/freshmart/storefront/internal/product/domain"
	"github.com/freshmart/storefront/internal/seed"
	userdomain "github.com/freshmart/storefront/internal/user/domain"
	"github.com/freshmart/storefront/internal/validation"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(func(reg *registry.Registry) AIGateway { return reg }),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// AIGateway is the slice of the AI registry the HTTP surface needs.
type AIGateway interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	DescribeImage(ctx context.Context, img aidomain.Image, prompt string) (string, error)
	FetchImage(ctx context.Context, imageURL string) (aidomain.Image, error)
	RefreshHealth(ctx context.Context)
	Ready() bool
	Health() []registry.ProviderHealth
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	productSvc productdomain.Service
	orderSvc   orderdomain.Service
	userSvc    userdomain.Service
	chatSvc    chatdomain.Service
	aiRegistry AIGateway
	worker     *validation.Worker
	hub        *notify.Hub
	seeder     *seed.Seeder
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	ProductSvc productdomain.Service
	OrderSvc   orderdomain.Service
	UserSvc    userdomain.Service
	ChatSvc    chatdomain.Service
	AIRegistry AIGateway
	Worker     *validation.Worker
	Hub        *notify.Hub
	Seeder     *seed.Seeder
}

func NewEngine(log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{Log: log}))
	r.Use(obstracing.GinMiddleware())
	r.Use(m.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", m.Handler())

	return r
}

func registerGin(log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		productSvc: p.ProductSvc,
		orderSvc:   p.OrderSvc,
		userSvc:    p.UserSvc,
		chatSvc:    p.ChatSvc,
		aiRegistry: p.AIRegistry,
		worker:     p.Worker,
		hub:        p.Hub,
		seeder:     p.Seeder,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.engine

	r.Static("/uploads", s.cfg.UploadDir)

	api := r.Group("/api")
	{
		api.GET("/health", s.Health)
		api.GET("/ai/health", s.AIHealth)

		api.GET("/products", s.ListProducts)
		api.POST("/products", s.CreateProduct)
		api.GET("/products/approved", s.ApprovedProducts)
		api.GET("/products/categories", s.ProductCategories)
		api.GET("/products/search", s.SearchProducts)
		api.GET("/products/validate-all", s.ApproveLegacyProducts)
		api.POST("/products/validate-all", s.ValidateAllProducts)
		api.GET("/products/validate/:id", s.ProductValidation)
		api.PATCH("/products/validate/:id", s.OverrideProductValidation)
		api.POST("/products/validate/:id", s.RevalidateProduct)
		api.POST("/products/generate-content", s.GenerateProductContent)
		api.GET("/products/:id", s.GetProduct)
		api.PUT("/products/:id", s.UpdateProduct)
		api.PATCH("/products/:id", s.UpdateProduct)
		api.DELETE("/products/:id", s.DeleteProduct)

		api.GET("/orders", s.ListOrders)
		api.POST("/orders", s.CreateOrder)
		api.GET("/orders/:id", s.GetOrder)
		api.PUT("/orders/:id", s.UpdateOrder)
		api.DELETE("/orders/:id", s.DeleteOrder)

		api.GET("/users", s.ListUsers)
		api.POST("/users", s.CreateUser)

		api.POST("/chat/order", s.ChatOrder)

		api.GET("/notifications", s.ListNotifications)
		api.DELETE("/notifications", s.ClearNotifications)
		api.DELETE("/notifications/:id", s.RemoveNotification)

		api.POST("/upload", s.Upload)
		api.POST("/seed", s.Seed)
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
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

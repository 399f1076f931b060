package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	authsvc "storefront/internal/service/auth"
	ordersvc "storefront/internal/service/order"
)

const serviceName = "storefront-api"

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*authsvc.Session, error)
	Authenticate(token string) (authsvc.Identity, error)
}

type ProductService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, userID int64, lines []ordersvc.Line) (*domain.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

// Deps carries the services the handlers delegate to.
type Deps struct {
	AuthSvc     AuthService
	ProductSvc  ProductService
	OrderSvc    OrderService
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger zerolog.Logger, db pinger, deps Deps) (*gin.Engine, error) {
	if deps.AuthSvc == nil || deps.ProductSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: auth, product and order services are required")
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		requestIDMiddleware(),
		accessLogMiddleware(logger),
		gin.Recovery(),
		metrics.Middleware(serviceName),
		cors.New(corsConfig(deps.CORSOrigins)),
	)
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Método no permitido"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Recurso no encontrado"})
	})

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", metrics.Handler())
	router.GET("/", indexHandler)
	router.GET("/app.js", appScriptHandler)

	h := &handlers{
		auth:     deps.AuthSvc,
		products: deps.ProductSvc,
		orders:   deps.OrderSvc,
		logger:   logger,
	}

	api := router.Group("/api")
	api.GET("/products", h.listProducts)
	api.GET("/categories", h.listCategories)
	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)

	authed := api.Group("", authMiddleware(deps.AuthSvc))
	authed.GET("/auth/me", h.me)
	authed.POST("/orders", h.createOrder)
	authed.GET("/orders", h.listOrders)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type handlers struct {
	auth     AuthService
	products ProductService
	orders   OrderService
	logger   zerolog.Logger
}

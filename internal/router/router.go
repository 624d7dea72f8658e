package router

import (
	"context"
	"net/http"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/handlers"
	"github.com/trunghai04/webmoi-sub001/internal/middleware"
	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Orders         service.OrderService
	Cart           service.CartService
	Verifier       middleware.TokenVerifier
	Log            *zap.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration
	// Ready проверяет зависимости для /health; nil означает "всегда готов".
	Ready func(ctx context.Context) error
}

func Router(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(c.Request.Context()); err != nil {
				d.Log.Warn("Health check не прошёл", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	orderHandler := handlers.NewOrderHandler(d.Orders, d.Log)
	cartHandler := handlers.NewCartHandler(d.Cart, d.Log)

	api := r.Group("/api/v1")
	api.Use(middleware.Timeout(d.RequestTimeout), middleware.AuthRequired(d.Verifier, d.Log))

	orders := api.Group("/orders")
	orders.POST("", orderHandler.CreateOrder)
	orders.GET("", orderHandler.ListOrders)
	orders.GET("/stats", orderHandler.Stats)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.POST("/:id/cancel", orderHandler.CancelOrder)
	orders.PATCH("/:id/status", orderHandler.UpdateStatus)

	cart := api.Group("/cart")
	cart.GET("", cartHandler.List)
	cart.DELETE("", cartHandler.Clear)
	cart.GET("/validate", cartHandler.Validate)
	cart.POST("/items", cartHandler.Add)
	cart.PUT("/items/:product_id", cartHandler.SetQuantity)
	cart.DELETE("/items/:product_id", cartHandler.Remove)

	return r
}

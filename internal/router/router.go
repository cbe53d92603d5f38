package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdantia/storefront-backend/config"
	"github.com/verdantia/storefront-backend/internal/app/controller"
	"github.com/verdantia/storefront-backend/internal/middleware"
)

type Router struct {
	cartController         *controller.CartController
	couponController       *controller.CouponController
	productController      *controller.ProductController
	notificationController *controller.NotificationController
	cartSession            *middleware.CartSessionMiddleware
	metricsHandler         http.Handler
	config                 *config.Config
}

func NewRouter(
	cartController *controller.CartController,
	couponController *controller.CouponController,
	productController *controller.ProductController,
	notificationController *controller.NotificationController,
	cartSession *middleware.CartSessionMiddleware,
	metricsHandler http.Handler,
	cfg *config.Config,
) *Router {
	return &Router{
		cartController:         cartController,
		couponController:       couponController,
		productController:      productController,
		notificationController: notificationController,
		cartSession:            cartSession,
		metricsHandler:         metricsHandler,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Verdantia storefront API is running",
		})
	})
	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProductByID)
		}

		v1.POST("/coupons/validate", r.couponController.ValidateCoupon)

		v1.POST("/cart/session", r.cartController.CreateSession)

		cart := v1.Group("/cart")
		cart.Use(r.cartSession.RequireSession())
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items/:productId", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:productId", r.cartController.RemoveFromCart)
			cart.POST("/coupon", r.cartController.ApplyCoupon)
			cart.DELETE("/coupon", r.cartController.RemoveCoupon)
			cart.GET("/shipping", r.cartController.EstimateShipping)
			cart.GET("/export", r.cartController.ExportCart)
		}

		if r.notificationController != nil {
			v1.GET("/ws/notifications", r.cartSession.RequireSession(), r.notificationController.Subscribe)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, X-Cart-Token, X-Request-ID, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

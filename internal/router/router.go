package router

import (

	"parkbay/config"
	"parkbay/internal/domain"
	"parkbay/internal/handler"
	"parkbay/internal/middleware"
	"parkbay/internal/repository"
	"parkbay/internal/service"
	"parkbay/internal/ws"
	"parkbay/pkg/cloudinary"
	"parkbay/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Setup(cfg *config.Config, store *repository.Store, gateway payment.Gateway, cloud cloudinary.Client, hub *ws.Hub, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(middleware.DefaultRateLimit, middleware.DefaultRateWindow)))

	// Services
	authSvc := service.NewAuthService(cfg, store.Users)
	bookingSvc := service.NewBookingService(store, gateway, &cfg.Booking, log, hub)
	refundSvc := service.NewRefundService(store, gateway, &cfg.Booking, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, log)
	meHandler := handler.NewMeHandler(store, log)
	carparkHandler := handler.NewCarParkHandler(store, cloud, log)
	bookingHandler := handler.NewBookingHandler(bookingSvc, store, log)
	paymentHandler := handler.NewPaymentHandler(store, gateway, log)
	refundHandler := handler.NewRefundHandler(refundSvc, store, log)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("", meHandler.Get)
			me.PATCH("", meHandler.Update)
			me.DELETE("", authHandler.CloseAccount)
			me.GET("/reservations", bookingHandler.ListMine)
			me.GET("/payments", paymentHandler.ListMine)
			me.GET("/refunds", refundHandler.ListMine)
			me.GET("/payout-account", paymentHandler.PayoutAccountStatus)
		}

		carparks := api.Group("/carparks")
		{
			carparks.GET("", carparkHandler.Search)
			carparks.GET("/nearby", carparkHandler.Nearby)
			carparks.GET("/:id", carparkHandler.Get)
			carparks.POST("", authMw, carparkHandler.Create)
			carparks.PATCH("/:id", authMw, carparkHandler.Update)
			carparks.DELETE("/:id", authMw, carparkHandler.Delete)
			carparks.POST("/:id/photo", authMw, carparkHandler.UploadPhoto)
			carparks.GET("/:id/log", authMw, carparkHandler.BookingLog)
			carparks.GET("/mine", authMw, carparkHandler.ListMine)
		}

		api.GET("/bays/:id/availability", bookingHandler.Availability)

		reservations := api.Group("/reservations")
		reservations.Use(authMw)
		{
			reservations.POST("", bookingHandler.Book)
			reservations.GET("/:id", bookingHandler.Get)
			reservations.POST("/:id/cancel", bookingHandler.Cancel)
		}

		api.GET("/payments/:id", authMw, paymentHandler.Get)

		refunds := api.Group("/refunds")
		refunds.Use(authMw)
		{
			refunds.POST("", refundHandler.Request)
			refunds.POST("/:id/resubmit", refundHandler.Resubmit)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/refunds", refundHandler.List)
			admin.POST("/refunds/:id/review", refundHandler.MarkReviewing)
			admin.POST("/refunds/:id/approve", refundHandler.Approve)
			admin.POST("/refunds/:id/deny", refundHandler.Deny)
		}
	}

	r.GET("/ws/availability", ws.UpgradeAvailabilityWS(&cfg.JWT, hub))

	return r
}

package router

import (
	"net/http"
	"time"

	"drivehub/config"
	"drivehub/internal/auth"
	"drivehub/internal/domain"
	"drivehub/internal/handler"
	"drivehub/internal/middleware"
	"drivehub/internal/repository"
	"drivehub/internal/service"
	"drivehub/pkg/gateway"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers and returns the engine plus
// the reconcile service for the background runner in main.
func Setup(cfg *config.Config, db *gorm.DB, provider gateway.Provider) (*gin.Engine, *service.ReconcileService) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewIPLimiter(100, time.Minute)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	linkRepo := repository.NewPaymentLinkRepository(db)

	// Services
	tokens := auth.NewTokenIssuer(&cfg.JWT)
	authSvc := service.NewAuthService(tokens, userRepo)
	couponSvc := service.NewCouponService(couponRepo)
	pricingSvc := service.NewPricingService()
	transactionSvc := service.NewTransactionService(transactionRepo, studentRepo, courseRepo, couponSvc, pricingSvc)
	linkSvc := service.NewPaymentLinkService(linkRepo, studentRepo, provider, cfg.Gateway.PaymentMethods)
	reconcileSvc := service.NewReconcileService(linkRepo, provider, cfg.Reconcile.CallTimeout)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentRepo)
	courseHandler := handler.NewCourseHandler(courseRepo)
	couponHandler := handler.NewCouponHandler(couponRepo, courseRepo, couponSvc, pricingSvc)
	transactionHandler := handler.NewTransactionHandler(transactionSvc, transactionRepo)
	linkHandler := handler.NewPaymentLinkHandler(linkSvc)
	reconcileHandler := handler.NewReconcileHandler(reconcileSvc)

	authMw := middleware.AuthRequired(tokens)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		api.POST("/users", authMw, adminMw, authHandler.CreateUser)

		students := api.Group("/students", authMw)
		{
			students.POST("", studentHandler.Create)
			students.GET("", studentHandler.List)
			students.GET("/:id", studentHandler.Get)
			students.PUT("/:id", studentHandler.Update)
			students.DELETE("/:id", adminMw, studentHandler.Delete)
			students.POST("/:id/transactions", transactionHandler.AddCourses)
			students.POST("/:id/reconcile", reconcileHandler.RunStudent)
		}

		courses := api.Group("/courses", authMw)
		{
			courses.POST("", adminMw, courseHandler.Create)
			courses.GET("", courseHandler.List)
			courses.GET("/:id", courseHandler.Get)
			courses.PUT("/:id", adminMw, courseHandler.Update)
			courses.DELETE("/:id", adminMw, courseHandler.Delete)
		}
		api.POST("/modalities", authMw, adminMw, courseHandler.CreateModality)
		api.GET("/modalities", authMw, courseHandler.ListModalities)

		coupons := api.Group("/coupons", authMw)
		{
			coupons.POST("", adminMw, couponHandler.Create)
			coupons.GET("", couponHandler.List)
			coupons.GET("/resolve", couponHandler.Resolve)
			coupons.POST("/price", couponHandler.Price)
			coupons.GET("/:id", couponHandler.Get)
			coupons.PATCH("/:id/active", adminMw, couponHandler.SetActive)
		}

		transactions := api.Group("/transactions", authMw)
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.Get)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
			transactions.GET("/:id/payment-links", linkHandler.ListByTransaction)
		}

		api.POST("/payment-links", authMw, linkHandler.Generate)
		api.POST("/reconcile", authMw, adminMw, reconcileHandler.RunAll)
	}

	return r, reconcileSvc
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fanvault/backoffice/internal/admin"
	"github.com/fanvault/backoffice/internal/alerts"
	"github.com/fanvault/backoffice/internal/auth"
	"github.com/fanvault/backoffice/internal/common"
	"github.com/fanvault/backoffice/internal/complaints"
	"github.com/fanvault/backoffice/internal/config"
	"github.com/fanvault/backoffice/internal/db"
	"github.com/fanvault/backoffice/internal/feed"
	"github.com/fanvault/backoffice/internal/logging"
	appmw "github.com/fanvault/backoffice/internal/middleware"
	"github.com/fanvault/backoffice/internal/payouts"
	"github.com/fanvault/backoffice/internal/shop"
	"github.com/fanvault/backoffice/internal/transactions"
	"github.com/fanvault/backoffice/internal/verification"
)

func main() {
	if err := config.Load(); err != nil {
		panic(err)
	}
	logging.Init(config.C.LogLevel)
	defer logging.Sync()

	db.Init()
	defer db.Close()

	alerts.Init()
	defer alerts.Close()

	auth.StartLoginSweep()

	// Route-class rate limiters.
	authRL := appmw.NewIPRateLimiter(5, time.Minute)
	adminRL := appmw.NewIPRateLimiter(120, time.Minute)
	publicRL := appmw.NewIPRateLimiter(300, time.Minute)
	go authRL.StartCleanup(5 * time.Minute)
	go adminRL.StartCleanup(5 * time.Minute)
	go publicRL.StartCleanup(5 * time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.Validator = common.NewRequestValidator()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Health
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn == nil || db.Conn.Ping(context.Background()) != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public auth routes (strict limiter)
	authRoutes := e.Group("", appmw.RateLimit(authRL))
	authRoutes.POST("/signup", auth.Signup)
	authRoutes.POST("/login", auth.Login)
	authRoutes.POST("/auth/password/request", auth.RequestPasswordReset)
	authRoutes.POST("/auth/password/reset", auth.ResetPassword)

	// Authenticated user surface
	g := e.Group("", appmw.RateLimit(publicRL), appmw.JWTMiddleware)
	g.GET("/me", auth.Me)
	g.GET("/transactions/me", transactions.MyTransactions)
	g.GET("/notifications", alerts.ListNotifications)
	g.POST("/notifications/:id/read", alerts.MarkNotificationRead)
	g.POST("/complaints", complaints.Create)
	g.POST("/verification", verification.Submit)
	g.GET("/verification/me", verification.MySubmissions)
	g.POST("/payouts", payouts.RequestPayout, appmw.RequireRoles("creator"))
	g.GET("/payouts/me", payouts.MyPayouts)

	// Admin back-office
	adminGroup := e.Group("/admin", appmw.RateLimit(adminRL), appmw.JWTMiddleware, appmw.AdminGuard)
	adminGroup.GET("/stats", admin.Stats)

	adminGroup.GET("/users", admin.ListUsers)
	adminGroup.POST("/users/:id/suspend", admin.SuspendUser)
	adminGroup.POST("/users/:id/activate", admin.ActivateUser)
	adminGroup.POST("/users/:id/role", admin.SetUserRole)
	adminGroup.DELETE("/users/:id", admin.DeleteUser)

	adminGroup.GET("/products", shop.ListProducts)
	adminGroup.POST("/products", shop.CreateProduct)
	adminGroup.PATCH("/products/:id", shop.UpdateProduct)
	adminGroup.POST("/products/:id/archive", shop.ArchiveProduct)
	adminGroup.DELETE("/products/:id", shop.DeleteProduct)

	adminGroup.GET("/orders", shop.ListOrders)
	adminGroup.PATCH("/orders/:id/status", shop.UpdateOrderStatus)

	adminGroup.GET("/payouts", payouts.ListPayouts)
	adminGroup.POST("/payouts/:id/approve", payouts.ApprovePayout)
	adminGroup.POST("/payouts/:id/reject", payouts.RejectPayout)

	adminGroup.GET("/transactions", transactions.List)

	adminGroup.GET("/gateways", admin.ListGateways)
	adminGroup.POST("/gateways", admin.CreateGateway)
	adminGroup.PATCH("/gateways/:id", admin.UpdateGateway)
	adminGroup.DELETE("/gateways/:id", admin.DeleteGateway)

	adminGroup.GET("/themes", admin.ListThemes)
	adminGroup.POST("/themes", admin.CreateTheme)
	adminGroup.POST("/themes/:id/activate", admin.ActivateTheme)
	adminGroup.DELETE("/themes/:id", admin.DeleteTheme)

	adminGroup.GET("/settings", admin.ListSettings)
	adminGroup.PUT("/settings/:key", admin.UpsertSetting)

	adminGroup.GET("/feed", feed.Serve)

	// Moderation surface: admins and moderators
	modGroup := e.Group("/admin", appmw.RateLimit(adminRL), appmw.JWTMiddleware, appmw.RequireRoles("admin", "moderator"))
	modGroup.GET("/complaints", complaints.List)
	modGroup.POST("/complaints/:id/claim", complaints.Claim)
	modGroup.POST("/complaints/:id/resolve", complaints.Resolve)
	modGroup.POST("/complaints/:id/dismiss", complaints.Dismiss)
	modGroup.GET("/verifications", verification.List)
	modGroup.POST("/verifications/:id/approve", verification.Approve)
	modGroup.POST("/verifications/:id/reject", verification.Reject)

	go func() {
		if err := e.Start(":" + config.C.Port); err != nil && err != http.ErrServerClosed {
			logging.L.Fatal("server error", zap.Error(err))
		}
	}()
	logging.L.Info("API server listening", zap.String("port", config.C.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logging.L.Error("shutdown error", zap.Error(err))
	}
	logging.L.Info("server stopped")
}

package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/prisonmarket/internal/metrics"
	"github.com/polkiloo/prisonmarket/internal/server/http/handlers"
	"github.com/polkiloo/prisonmarket/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(
	facade handlers.MarketFacade,
	staff middleware.StaffVerifier,
	webhook middleware.WebhookVerifier,
	bot handlers.BotReplier,
	rec *metrics.Recorder,
	logger *slog.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	orderHandler := handlers.NewOrderHandler(facade)
	staffHandler := handlers.NewStaffHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade, logger)
	healthHandler := handlers.NewHealthHandler(facade)
	telegramHandler := handlers.NewTelegramHandler(facade, bot, logger)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(rec.Handler()))

	contact := engine.Group("")
	contact.Use(middleware.AuthRequired(facade))
	contact.POST("/pay-hold/", paymentHandler.Hold)
	contact.POST("/pay-transaction/", paymentHandler.Confirm)
	contact.GET("/check-status/:transactionId/", paymentHandler.CheckStatus)

	api := contact.Group("/api")
	api.POST("/orders", orderHandler.Place)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/:id", orderHandler.Get)
	api.GET("/orders/:id/items", orderHandler.Items)
	api.POST("/order-product", orderHandler.PlaceSingle)
	api.GET("/transactions", paymentHandler.Transactions)
	api.GET("/transactions/:id", paymentHandler.Transaction)

	staffGroup := engine.Group("/api/staff")
	staffGroup.Use(middleware.StaffRequired(staff))
	staffGroup.PATCH("/orders/:id/status", staffHandler.AdvanceStatus)

	engine.POST("/telegram/webhook", middleware.WebhookSecretRequired(webhook), telegramHandler.Webhook)

	return engine
}

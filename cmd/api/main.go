package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	handler "github.com/gurihub/payments/internal/adapter/primary/http"
	"github.com/gurihub/payments/internal/adapter/secondary/database"
	"github.com/gurihub/payments/internal/adapter/secondary/gateway"
	"github.com/gurihub/payments/internal/adapter/secondary/messaging"
	"github.com/gurihub/payments/internal/constant/model/db"
	"github.com/gurihub/payments/internal/core/config"
	"github.com/gurihub/payments/internal/core/service"
	"github.com/gurihub/payments/internal/port/output"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize secondary adapter: Database
	dbConn, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.SeedServicePricing(dbConn.DB); err != nil {
		logger.Error("failed to seed service pricing", "error", err)
		os.Exit(1)
	}

	// Initialize secondary adapters: Repositories and Messaging (implement output ports)
	paymentRepo := database.NewGormPaymentRepository(dbConn.DB)
	marketplaceRepo := database.NewGormMarketplaceRepository(dbConn.DB)
	pricingRepo := database.NewGormPricingRepository(dbConn.DB)

	events, err := messaging.NewRabbitMQClient(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	// Provider gateway clients share one bounded HTTP client
	providerHTTP := &http.Client{Timeout: 30 * time.Second}
	gateways := []output.PaymentGateway{
		gateway.NewMpesaClient(cfg.Mpesa, providerHTTP),
		gateway.NewWaafiClient(cfg.Waafi, providerHTTP),
	}

	// Initialize core services (implement input ports)
	paymentService := service.NewPaymentService(paymentRepo, marketplaceRepo, pricingRepo, gateways, logger)
	callbackService := service.NewReconciler(paymentRepo, events, logger)

	// Initialize primary adapter: HTTP handler (uses input ports)
	paymentHandler := handler.NewPaymentHandler(paymentService, callbackService, logger)

	// Initialize Echo
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes
	api := e.Group("/api/v1")
	paymentHandler.Register(api)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting API server", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

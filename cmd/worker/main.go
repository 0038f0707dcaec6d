package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gurihub/payments/internal/adapter/secondary/messaging"
	"github.com/gurihub/payments/internal/core/config"
	"github.com/gurihub/payments/internal/core/notifications"
	"github.com/gurihub/payments/internal/port/output"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.WebhookURL == "" {
		logger.Warn("WEBHOOK_URL not set; reconciliation events will be consumed and dropped")
	}

	// Initialize secondary adapter: Messaging (concrete type for worker)
	msgClient, err := messaging.NewRabbitMQClientConcrete(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer msgClient.Close()

	// Start consuming reconciliation events and deliver notifications
	err = msgClient.ConsumeReconciliationEvents(func(event output.ReconciliationEvent) error {
		logger.Info("delivering payment notification",
			"transaction_id", event.TransactionID,
			"status", string(event.Status),
		)
		if cfg.WebhookURL == "" {
			return nil
		}
		return notifications.SendWebhook(cfg.WebhookURL, event)
	})
	if err != nil {
		logger.Error("failed to start consuming events", "error", err)
		os.Exit(1)
	}

	logger.Info("payment notification worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
}

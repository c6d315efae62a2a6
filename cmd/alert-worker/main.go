package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finance-tracker/internal/amqp"
	"finance-tracker/internal/config"
	applog "finance-tracker/internal/log"
)

// The alert worker drains the budget alert queue and logs each alert.
// It is the integration point for real notifiers (mail, chat webhooks):
// replace handleAlert and the delivery semantics stay the same.
func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Alert worker started", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeBudgetAlerts(ctx, func(msg *amqp.BudgetAlertMessage) error {
		logger.Warn("Budget exceeded",
			applog.FieldUserID, msg.UserID,
			applog.FieldCategory, msg.Category,
			applog.FieldMonth, msg.Month,
			"spent", msg.Spent,
			"limit", msg.Limit,
			"overspend", msg.Spent-msg.Limit,
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Alert worker stopped gracefully")
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/notification/application"
	notifkafka "github.com/sgiraldo-dev/Inventory-Loan-System/internal/notification/infrastructure/kafka"
	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/notification/infrastructure/smtp"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/config"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/idempotency"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/logging"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/shutdown"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/tracing"
)

func main() {
	config.Load()
	log := logging.New("notification-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	kafkaAddr := config.Env("KAFKA_ADDR", "localhost:9092")
	redisAddr := config.Env("REDIS_ADDR", "localhost:6379")
	otelAddr := config.Env("OTEL_ADDR", "localhost:4318")
	eventsTopic := config.Env("EVENTS_TOPIC", "loan.events")
	smtpHost := config.Env("SMTP_HOST", "localhost")
	smtpPort := config.Env("SMTP_PORT", "1025")
	smtpFrom := config.Env("SMTP_FROM", "inventario@colegio.edu.co")
	smtpUser := config.Env("SMTP_USER", "")
	smtpPass := config.Env("SMTP_PASS", "")
	adminEmails := config.EnvList("ADMIN_EMAILS")

	tp, err := tracing.Init(ctx, "notification-service", otelAddr, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, 10*time.Minute)

	mailer := smtp.NewMailer(smtpHost, smtpPort, smtpFrom, smtpUser, smtpPass)
	sink := application.NewSink(log, mailer, adminEmails)
	consumer := notifkafka.NewConsumer(log, []string{kafkaAddr}, eventsTopic, "notification-service", sink, idem)

	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("notification-service shutdown complete")
}

package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	loandomain "github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/notification/application"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/idempotency"
	"github.com/sgiraldo-dev/Inventory-Loan-System/pkg/tracing"
)

// Consumer reads lifecycle events from the loan topic and fans them into the
// sink. Every message is committed regardless of delivery outcome: this path
// is best-effort by contract, and a poison message must not wedge the group.
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	sink   *application.Sink
	idem   *idempotency.Store
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, sink *application.Sink, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:    log,
		reader: r,
		sink:   sink,
		idem:   idem,
		tracer: otel.Tracer("notification-consumer"),
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
		seen, err := c.idem.Seen(ctx, key)
		if err != nil {
			c.log.Error("idempotency check failed", "err", err)
			continue
		}
		if seen {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "ConsumeLoanEvent")

		eventType := headerValue(msg.Headers, "event_type")
		if err := c.handle(msgCtx, eventType, msg.Value); err != nil {
			c.log.Error("notification failed", "event_type", eventType, "err", err)
		}

		span.End()
		_ = c.reader.CommitMessages(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, eventType string, payload []byte) error {
	switch eventType {
	case loandomain.EventLoanCreated:
		var ev loandomain.LoanCreated
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		return c.sink.OnLoanCreated(ctx, ev)
	case loandomain.EventLoanApproved:
		var ev loandomain.LoanApproved
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		return c.sink.OnLoanApproved(ctx, ev)
	case loandomain.EventLoanReturned:
		var ev loandomain.LoanReturned
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		return c.sink.OnLoanReturned(ctx, ev)
	case loandomain.EventLoanDeferred:
		var ev loandomain.LoanDeferred
		if err := json.Unmarshal(payload, &ev); err != nil {
			return err
		}
		return c.sink.OnLoanDeferred(ctx, ev)
	default:
		c.log.Warn("unknown event type", "event_type", eventType)
		return nil
	}
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}

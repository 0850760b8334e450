// Command notifier tails the request event exchange and emits a structured
// log line per event. Delivery channels to end users (mail, messengers)
// plug into processDelivery; until then the log stream doubles as an audit
// trail of lifecycle activity.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rabbitmq/amqp091-go"

	"github.com/example/reqdesk/backend/internal/config"
	"github.com/example/reqdesk/backend/internal/mq"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.Load()

	consumer, err := mq.NewRabbitConsumer(cfg.MQURL, cfg.MQRequestExchange, cfg.MQRequestQueue)
	if err != nil {
		slog.Error("connect rabbitmq", "error", err)
		os.Exit(1)
	}

	if err := consumer.Consume(func(msg amqp091.Delivery) {
		if err := processDelivery(msg); err != nil {
			slog.Warn("process event failed", "routingKey", msg.RoutingKey, "error", err)
		}
	}); err != nil {
		slog.Error("start consuming", "error", err)
		os.Exit(1)
	}
	slog.Info("notifier consuming", "queue", cfg.MQRequestQueue)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	slog.Info("shutdown initiated")
	if err := consumer.Close(); err != nil {
		slog.Warn("close consumer", "error", err)
	}
	slog.Info("bye")
}

// processDelivery decodes one event and acknowledges it. Malformed payloads
// are rejected without requeue so they cannot wedge the queue.
func processDelivery(msg amqp091.Delivery) error {
	var payload map[string]any
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		_ = msg.Nack(false, false)
		return err
	}
	slog.Info("request event", "routingKey", msg.RoutingKey, "payload", payload)
	return msg.Ack(false)
}

package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lacabane/commandes/internal/logger"
	"github.com/lacabane/commandes/internal/repository"
)

const groupID = "order-events-consumer-group"

func main() {
	log := logger.New()
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "order_events"
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(brokers, ","),
		GroupID:        groupID,
		Topic:          topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Error("failed to close reader", zap.Error(err))
		}
	}()

	log.Info("consumer connected", zap.String("topic", topic), zap.String("brokers", brokers))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("shutdown signal received, stopping consumer")
				return
			}
			log.Error("failed to read message", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		var event repository.OrderEventPayload
		if err := json.Unmarshal(m.Value, &event); err != nil {
			log.Warn("skipping malformed event",
				zap.ByteString("value", m.Value), zap.Error(err))
			continue
		}

		log.Info("order event",
			zap.String("event", event.Event),
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status),
			zap.String("pickup_date", event.PickupDate),
			zap.Int64("offset", m.Offset),
		)
	}
}

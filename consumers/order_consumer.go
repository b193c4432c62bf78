package consumers

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"retro-store/analytics"
	"retro-store/config"
	"retro-store/database"
	"retro-store/middlewares"
	"retro-store/models"
	"retro-store/rabbitmq"
)

const stockCheckTimeout = 10 * time.Second

// Consumer 消费者所需的 *amqp.Channel 方法
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

var lowStockProducts = database.LowStockProducts

func StartOrderConsumer(ch Consumer, cfg *config.Config) error {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"retro-store", // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register order consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"retro-store-dlq",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return nil
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
	return nil
}

func processOrderMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
			_ = msg.Nack(false, false)
		}
	}()

	event, err := rabbitmq.DecodeEvent(msg.Body)
	if err != nil {
		log.Printf("Invalid message format: %v", err)
		// 不重新入队，进入死信队列
		if err := msg.Nack(false, false); err != nil {
			log.Printf("Failed to nack message: %v", err)
		}
		return
	}

	log.Printf("Processing order event: ID=%d, Type=%s", event.OrderID, event.Type)

	switch event.Type {
	case rabbitmq.EventCreated:
		handleOrderCreated(event)
	case rabbitmq.EventStockCheck:
		if err := handleStockCheck(event); err != nil {
			// 首次失败重新入队，重投仍失败则进入死信队列
			requeue := !msg.Redelivered
			log.Printf("Stock check for order %d failed (requeue=%t): %v", event.OrderID, requeue, err)
			if err := msg.Nack(false, requeue); err != nil {
				log.Printf("Failed to nack message: %v", err)
			}
			return
		}
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack message: %v", err)
	}
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	middlewares.RecordOrderOperation("dead_letter", false)
	if err := msg.Ack(false); err != nil {
		log.Printf("Failed to ack dead letter: %v", err)
	}
}

func handleOrderCreated(event models.OrderEvent) {
	log.Printf("Order %d placed by %s, total %s", event.OrderID, event.Username, analytics.FormatMoney(event.Total))
	middlewares.RecordOrderOperation("event_created", true)
}

// handleStockCheck 下单后检查低库存商品
func handleStockCheck(event models.OrderEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), stockCheckTimeout)
	defer cancel()

	products, err := lowStockProducts(ctx, analytics.LowStockThreshold)
	if err != nil {
		return err
	}
	for _, p := range products {
		log.Printf("Warning: low stock after order %d: %s (id %d) has %d left", event.OrderID, p.Name, p.ID, p.Stock)
	}
	return nil
}

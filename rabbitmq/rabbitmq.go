package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"retro-store/config"
	"retro-store/models"
)

const (
	EventCreated    = "created"
	EventStockCheck = "stock_check"

	defaultPriority = 5
	highPriority    = 9
	// 大额订单阈值
	largeOrderTotal = 1000
)

// ErrDelayUnavailable 延迟交换机未声明（缺少插件）
var ErrDelayUnavailable = errors.New("delayed exchange not available")

// Publisher 发布消息所需的 *amqp.Channel 方法
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	Cfg     *config.Config

	// pub 为空时使用 Channel
	pub Publisher
	// delayed 仅在延迟交换机声明并绑定成功后为 true
	delayed bool
}

func NewRabbitMQ(cfg *config.Config) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &RabbitMQ{
		Conn:    conn,
		Channel: ch,
		Cfg:     cfg,
	}, nil
}

func (r *RabbitMQ) SetupQueues() error {
	deadLetterExchange := r.Cfg.DeadLetterQueue + "_exchange"

	if err := r.Channel.ExchangeDeclare(deadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dead letter exchange: %w", err)
	}
	if _, err := r.Channel.QueueDeclare(r.Cfg.DeadLetterQueue, true, false, false, false,
		amqp.Table{"x-queue-type": "classic"},
	); err != nil {
		return fmt.Errorf("declare dead letter queue: %w", err)
	}
	if err := r.Channel.QueueBind(r.Cfg.DeadLetterQueue, r.Cfg.DeadLetterQueue, deadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind dead letter queue: %w", err)
	}

	if err := r.Channel.ExchangeDeclare(r.Cfg.OrderExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare order exchange: %w", err)
	}

	// 订单队列：优先级 + 死信
	if _, err := r.Channel.QueueDeclare(r.Cfg.OrderQueue, true, false, false, false,
		amqp.Table{
			"x-max-priority":            r.Cfg.MaxPriority,
			"x-dead-letter-exchange":    deadLetterExchange,
			"x-dead-letter-routing-key": r.Cfg.DeadLetterQueue,
		},
	); err != nil {
		return fmt.Errorf("declare order queue: %w", err)
	}
	if err := r.Channel.QueueBind(r.Cfg.OrderQueue, "", r.Cfg.OrderExchange, false, nil); err != nil {
		return fmt.Errorf("bind order queue: %w", err)
	}

	// 延迟交换机需要 rabbitmq_delayed_message_exchange 插件，缺失时不调度库存检查
	r.delayed = false
	if err := r.Channel.ExchangeDeclare(r.Cfg.DelayExchange, "x-delayed-message", true, false, false, false,
		amqp.Table{"x-delayed-type": "direct"},
	); err != nil {
		log.Printf("Warning: Delayed exchange not supported: %v", err)
		return r.reopenChannel()
	}
	if err := r.Channel.QueueBind(r.Cfg.OrderQueue, r.Cfg.OrderQueue, r.Cfg.DelayExchange, false, nil); err != nil {
		return fmt.Errorf("bind delay exchange: %w", err)
	}
	r.delayed = true
	return nil
}

// DelayedAvailable 延迟交换机是否可用
func (r *RabbitMQ) DelayedAvailable() bool {
	return r.delayed
}

func (r *RabbitMQ) publisher() Publisher {
	if r.pub != nil {
		return r.pub
	}
	return r.Channel
}

// reopenChannel 声明失败后 broker 会关闭通道，重新打开
func (r *RabbitMQ) reopenChannel() error {
	if !r.Channel.IsClosed() {
		return nil
	}
	ch, err := r.Conn.Channel()
	if err != nil {
		return fmt.Errorf("reopen channel: %w", err)
	}
	r.Channel = ch
	return nil
}

// NewOrderEvent 创建订单事件
func NewOrderEvent(orderID int64, username, eventType string, total float64) models.OrderEvent {
	return models.OrderEvent{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		Username: username,
		Type:     eventType,
		Status:   models.OrderStatusCompleted,
		Total:    total,
		Occurred: time.Now().UTC(),
	}
}

// OrderPriority 大额订单高优先级
func OrderPriority(total float64) int {
	if total > largeOrderTotal {
		return highPriority
	}
	return defaultPriority
}

func EncodeEvent(event models.OrderEvent) ([]byte, error) {
	return json.Marshal(event)
}

func DecodeEvent(body []byte) (models.OrderEvent, error) {
	var event models.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.OrderEvent{}, fmt.Errorf("decode order event: %w", err)
	}
	if event.Type == "" {
		return models.OrderEvent{}, fmt.Errorf("decode order event: missing type")
	}
	return event, nil
}

func newPublishing(event models.OrderEvent) (amqp.Publishing, error) {
	body, err := EncodeEvent(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Occurred,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         event.Type,
		Body:         body,
	}, nil
}

func (r *RabbitMQ) PublishOrderEvent(event models.OrderEvent, priority int) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}
	msg.Priority = uint8(priority)

	return r.publisher().Publish(
		r.Cfg.OrderExchange,
		"",
		false, // mandatory
		false, // immediate
		msg,
	)
}

// PublishDelayedEvent 发送延迟事件，延迟交换机不可用时返回 ErrDelayUnavailable
func (r *RabbitMQ) PublishDelayedEvent(event models.OrderEvent, delay time.Duration) error {
	if !r.delayed {
		return ErrDelayUnavailable
	}
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}
	msg.Headers = amqp.Table{
		"x-delay": delay.Milliseconds(),
	}

	return r.publisher().Publish(
		r.Cfg.DelayExchange,
		r.Cfg.OrderQueue,
		false, // mandatory
		false, // immediate
		msg,
	)
}

func (r *RabbitMQ) Close() {
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ channel: %v", err)
		}
	}
	if r.Conn != nil {
		if err := r.Conn.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ connection: %v", err)
		}
	}
}

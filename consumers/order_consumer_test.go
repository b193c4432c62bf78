package consumers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retro-store/config"
	"retro-store/models"
	"retro-store/rabbitmq"
)

type ackRecorder struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func delivery(t *testing.T, event models.OrderEvent) (amqp.Delivery, *ackRecorder) {
	t.Helper()
	body, err := rabbitmq.EncodeEvent(event)
	require.NoError(t, err)
	rec := &ackRecorder{}
	return amqp.Delivery{Acknowledger: rec, Body: body}, rec
}

func stubLowStock(t *testing.T, fn func(ctx context.Context, threshold int) ([]models.Product, error)) {
	t.Helper()
	prev := lowStockProducts
	lowStockProducts = fn
	t.Cleanup(func() { lowStockProducts = prev })
}

func TestProcessOrderMessage_Created(t *testing.T) {
	msg, rec := delivery(t, rabbitmq.NewOrderEvent(1, "jdoe", rabbitmq.EventCreated, 45.99))
	processOrderMessage(msg)
	assert.Equal(t, 1, rec.acked)
	assert.Zero(t, rec.nacked)
}

func TestProcessOrderMessage_StockCheck(t *testing.T) {
	var threshold int
	stubLowStock(t, func(ctx context.Context, th int) ([]models.Product, error) {
		threshold = th
		return []models.Product{{ID: 3, Name: "Pac-Man Arcade Cabinet", Stock: 1}}, nil
	})

	msg, rec := delivery(t, rabbitmq.NewOrderEvent(1, "jdoe", rabbitmq.EventStockCheck, 0))
	processOrderMessage(msg)
	assert.Equal(t, 5, threshold)
	assert.Equal(t, 1, rec.acked)
}

func TestProcessOrderMessage_StockCheckFailure(t *testing.T) {
	stubLowStock(t, func(ctx context.Context, th int) ([]models.Product, error) {
		return nil, errors.New("db down")
	})

	msg, rec := delivery(t, rabbitmq.NewOrderEvent(1, "jdoe", rabbitmq.EventStockCheck, 0))
	processOrderMessage(msg)
	assert.Zero(t, rec.acked)
	assert.Equal(t, 1, rec.nacked)
	assert.True(t, rec.requeue, "first failure goes back on the queue")

	redelivered, rec := delivery(t, rabbitmq.NewOrderEvent(1, "jdoe", rabbitmq.EventStockCheck, 0))
	redelivered.Redelivered = true
	processOrderMessage(redelivered)
	assert.Equal(t, 1, rec.nacked)
	assert.False(t, rec.requeue, "second failure is dead-lettered")
}

func TestProcessOrderMessage_Malformed(t *testing.T) {
	rec := &ackRecorder{}
	processOrderMessage(amqp.Delivery{Acknowledger: rec, Body: []byte("42|created")})
	assert.Equal(t, 1, rec.nacked)
	assert.False(t, rec.requeue)
}

func TestProcessDeadLetterMessage(t *testing.T) {
	rec := &ackRecorder{}
	processDeadLetterMessage(amqp.Delivery{Acknowledger: rec, Body: []byte("x")})
	assert.Equal(t, 1, rec.acked)
}

type fakeChannel struct {
	queues map[string]chan amqp.Delivery
	fail   map[string]error
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	if err := f.fail[queue]; err != nil {
		return nil, err
	}
	return f.queues[queue], nil
}

func TestStartOrderConsumer(t *testing.T) {
	cfg := &config.Config{OrderQueue: "orders", DeadLetterQueue: "dlq"}
	ch := &fakeChannel{queues: map[string]chan amqp.Delivery{
		"orders": make(chan amqp.Delivery, 1),
		"dlq":    make(chan amqp.Delivery, 1),
	}}
	require.NoError(t, StartOrderConsumer(ch, cfg))

	msg, rec := delivery(t, rabbitmq.NewOrderEvent(1, "jdoe", rabbitmq.EventCreated, 1))
	ch.queues["orders"] <- msg
	close(ch.queues["orders"])
	close(ch.queues["dlq"])

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.acked == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStartOrderConsumer_RegisterFails(t *testing.T) {
	cfg := &config.Config{OrderQueue: "orders", DeadLetterQueue: "dlq"}
	ch := &fakeChannel{fail: map[string]error{"orders": errors.New("no queue")}}
	assert.Error(t, StartOrderConsumer(ch, cfg))
}

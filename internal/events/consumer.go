package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"nodeguard-platform/internal/logger"
)

// Message represents a received Kafka message
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
}

// Handler processes consumed messages. Handler errors are logged and the
// offset is committed anyway: triggered workflows must fire at most once per
// event, so redelivery is worse than a dropped message.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// Consumer wraps a confluent-kafka-go consumer subscribed to a single topic
type Consumer struct {
	consumer *kafka.Consumer
	handler  Handler
	logger   *logger.Logger
	topic    string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// ConsumerConfig holds per-consumer Kafka settings
type ConsumerConfig struct {
	Brokers         string
	GroupID         string
	Topic           string
	AutoOffsetReset string
}

// NewConsumer creates a consumer for a single topic
func NewConsumer(cfg ConsumerConfig, handler Handler, log *logger.Logger) (*Consumer, error) {
	if cfg.Brokers == "" {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	if cfg.GroupID == "" {
		return nil, fmt.Errorf("kafka consumer group ID not configured")
	}

	autoOffsetReset := cfg.AutoOffsetReset
	if autoOffsetReset == "" {
		autoOffsetReset = "latest"
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  autoOffsetReset,
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Consumer{
		consumer: consumer,
		handler:  handler,
		logger:   log,
		topic:    cfg.Topic,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start subscribes to the topic and begins the consumption loop
func (c *Consumer) Start() error {
	if err := c.consumer.SubscribeTopics([]string{c.topic}, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", c.topic, err)
	}

	c.wg.Add(1)
	go c.run()

	c.logger.WithField("topic", c.topic).Info("Kafka consumer started")
	return nil
}

func (c *Consumer) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			c.poll()
		}
	}
}

// poll reads and processes a single message
func (c *Consumer) poll() {
	ev := c.consumer.Poll(100)
	if ev == nil {
		return
	}

	switch e := ev.(type) {
	case *kafka.Message:
		c.handleMessage(e)

	case kafka.Error:
		if e.Code() != kafka.ErrTimedOut {
			c.logger.WithFields(map[string]interface{}{
				"topic": c.topic,
				"code":  e.Code().String(),
			}).WithError(e).Error("Kafka consumer error")
		}

	case kafka.PartitionEOF:
		// End of partition, normal operation.
	}
}

func (c *Consumer) handleMessage(km *kafka.Message) {
	msg := &Message{
		Topic:     *km.TopicPartition.Topic,
		Partition: km.TopicPartition.Partition,
		Offset:    int64(km.TopicPartition.Offset),
		Key:       km.Key,
		Value:     km.Value,
		Timestamp: km.Timestamp,
	}

	if err := c.handler.Handle(c.ctx, msg); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).WithError(err).Error("Failed to handle message")
	}

	if _, err := c.consumer.CommitMessage(km); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		}).WithError(err).Error("Failed to commit offset")
	}
}

// Stop gracefully stops the consumer, waiting for the loop to drain or the
// context to expire
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return c.consumer.Close()
	case <-ctx.Done():
		c.consumer.Close()
		return ctx.Err()
	}
}

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"nodeguard-platform/internal/config"
	"nodeguard-platform/internal/logger"
	"nodeguard-platform/internal/models"
	"nodeguard-platform/internal/services"
)

// StreamConsumer runs one Kafka consumer per security-event topic, decoding
// messages into security events and feeding them to the processor. Each topic
// gets its own consumer group so topics rebalance independently.
type StreamConsumer struct {
	logger    *logger.Logger
	consumers []*Consumer
}

// NewStreamConsumer creates consumers for the configured event topics
func NewStreamConsumer(
	log *logger.Logger,
	processor *services.EventProcessor,
	cfg *config.Config,
) (*StreamConsumer, error) {
	topics := []string{cfg.Kafka.SecurityTopic, cfg.Kafka.WorkflowTopic}

	sc := &StreamConsumer{logger: log}
	handler := &eventHandler{logger: log, processor: processor}

	for _, topic := range topics {
		if topic == "" {
			continue
		}
		consumer, err := NewConsumer(ConsumerConfig{
			Brokers:         cfg.Kafka.Brokers,
			GroupID:         fmt.Sprintf("%s-%s", cfg.Kafka.GroupPrefix, topic),
			Topic:           topic,
			AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
		}, handler, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create consumer for %s: %w", topic, err)
		}
		sc.consumers = append(sc.consumers, consumer)
	}

	return sc, nil
}

// Start begins consumption on all topics
func (s *StreamConsumer) Start() error {
	for _, c := range s.consumers {
		if err := c.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops all consumers
func (s *StreamConsumer) Stop(ctx context.Context) error {
	var firstErr error
	for _, c := range s.consumers {
		if err := c.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// eventHandler decodes stream messages and hands them to the processor
type eventHandler struct {
	logger    *logger.Logger
	processor *services.EventProcessor
}

func (h *eventHandler) Handle(ctx context.Context, msg *Message) error {
	var event models.SecurityEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to decode security event: %w", err)
	}

	if event.EventID == "" {
		event.EventID = fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = msg.Timestamp
	}

	// Provenance for topic-gated workflow inputs and execution records.
	event.SourceTopic = msg.Topic
	event.SourcePartition = msg.Partition
	event.SourceOffset = msg.Offset

	return h.processor.ProcessEvent(ctx, &event, "kafka")
}

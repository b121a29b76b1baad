package service

import (
	"context"
	"encoding/json"
	"time"

	"healthassist-be/internal/dto"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "CHAT_EVENTS"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventSink receives every consumed event, e.g. the NATS publisher.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	auditLogger logger.ILogger
	sink        EventSink
}

// NewConsumerService drains the event topic into the audit log. sink may be
// nil when no external bus is connected.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	auditLogger logger.ILogger,
	sink EventSink,
) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		auditLogger: auditLogger,
		sink:        sink,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.auditLogger.Error(consumerModule, "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.auditLogger.Info(consumerModule, payload.Type, payload.Data)

	if cs.sink != nil {
		event := events.BaseEvent{Type: payload.Type, Data: payload.Data, OccurredAt: payload.OccurredAt}
		sinkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := cs.sink.Publish(sinkCtx, event); err != nil {
			cs.auditLogger.Warn(consumerModule, "Failed to forward event", map[string]interface{}{
				"type":  payload.Type,
				"error": err.Error(),
			})
		}
		cancel()
	}

	msg.Ack()
}

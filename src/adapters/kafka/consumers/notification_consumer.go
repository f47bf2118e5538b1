package consumers

import (
	"context"
	"encoding/json"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/infra/kafka"

	"go.uber.org/zap"
)

type EventHandler interface {
	Handle(ctx context.Context, event domain.ConnectionEvent) error
}

type MessageSource interface {
	Consume(ctx context.Context, handler kafka.Handler, topic string) error
}

// NotificationConsumer lê o tópico de eventos de conexão e repassa cada evento ao serviço de notificações.
type NotificationConsumer struct {
	logger  *zap.Logger
	handler EventHandler
}

func NewNotificationConsumer(logger *zap.Logger, handler EventHandler) *NotificationConsumer {
	return &NotificationConsumer{
		logger:  logger.With(zap.String("component", "notification_consumer")),
		handler: handler,
	}
}

func (c *NotificationConsumer) Start(ctx context.Context, source MessageSource, topic string) error {
	c.logger.Info("starting notification consumer", zap.String("topic", topic))
	return source.Consume(ctx, c.HandleMessages, topic)
}

// HandleMessages processa o lote em ordem. Um erro devolve o lote inteiro para reprocessamento,
// por isso o envio de email é at-least-once.
func (c *NotificationConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	for _, msg := range messages {
		// Filtra pelo header antes de desserializar
		if eventType, ok := msg.Headers["event_type"]; ok && eventType != string(domain.EventConnectionRequested) {
			continue
		}

		var event domain.ConnectionEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Mensagem venenosa: reprocessar não resolve
			c.logger.Error("failed to unmarshal connection event", zap.String("key", msg.Key), zap.Error(err))
			continue
		}

		if err := c.handler.Handle(ctx, event); err != nil {
			c.logger.Error("failed to handle connection event",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
			return fmt.Errorf("NotificationConsumer.HandleMessages - event %s: %w", event.ID, err)
		}
	}

	c.logger.Debug("processed messages batch", zap.Int("count", len(messages)))
	return nil
}

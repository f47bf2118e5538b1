package events

import (
	"context"
	"encoding/json"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/infra/kafka"

	"go.uber.org/zap"
)

const (
	SourceService = "connection-graph-api"
	SchemaVersion = "v1"
)

type Producer interface {
	Publish(ctx context.Context, messages []kafka.Message, topic string) error
}

// DomainEventPublisher publica as transições do grafo de conexões no Kafka.
type DomainEventPublisher struct {
	logger   *zap.Logger
	producer Producer
	topic    string
}

func NewDomainEventPublisher(logger *zap.Logger, producer Producer, topic string) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger:   logger.With(zap.String("component", "domain_event_publisher")),
		producer: producer,
		topic:    topic,
	}
}

// Notify publica um único evento. O chamador decide o que fazer com o erro.
func (p *DomainEventPublisher) Notify(ctx context.Context, event domain.ConnectionEvent) error {
	return p.PublishConnectionEvents(ctx, []domain.ConnectionEvent{event})
}

func (p *DomainEventPublisher) PublishConnectionEvents(ctx context.Context, events []domain.ConnectionEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("DomainEventPublisher.PublishConnectionEvents - failed to marshal event %s: %w", event.ID, err)
		}

		messages = append(messages, kafka.Message{
			// Particiona pelo par para manter a ordem das transições
			Key:     event.PartitionKey(),
			Value:   eventBytes,
			Headers: eventHeaders(event),
		})
	}

	if err := p.producer.Publish(ctx, messages, p.topic); err != nil {
		return fmt.Errorf("DomainEventPublisher.PublishConnectionEvents - failed to publish to topic %s: %w", p.topic, err)
	}

	p.logger.Debug("published connection events", zap.String("topic", p.topic), zap.Int("count", len(messages)))
	return nil
}

// eventHeaders permitem filtrar por tipo sem desserializar o payload.
func eventHeaders(event domain.ConnectionEvent) map[string]string {
	return map[string]string{
		"event_type":     string(event.Type),
		"event_id":       event.ID,
		"source_service": SourceService,
		"schema_version": SchemaVersion,
	}
}

// LogNotifier é usado quando o Kafka está desligado: o evento só aparece no log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(zap.String("component", "log_notifier"))}
}

func (n *LogNotifier) Notify(_ context.Context, event domain.ConnectionEvent) error {
	n.logger.Info("connection event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("actor_id", event.ActorID),
		zap.String("subject_id", event.SubjectID))
	return nil
}

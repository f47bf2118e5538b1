package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type Message struct {
	Key      string
	Value    []byte
	Headers  map[string]string
	internal *sarama.ConsumerMessage
}

type Handler func(ctx context.Context, messages []Message) error

func newConfig(batchSize int) *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_8_0_0

	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Group.Session.Timeout = 30 * time.Second
	config.Consumer.Group.Heartbeat.Interval = 10 * time.Second
	config.Consumer.MaxProcessingTime = 30 * time.Second
	config.ChannelBufferSize = batchSize * 2

	// Eventos de conexão são pequenos e raros, prioriza durabilidade à vazão
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 64 * 1024

	return config
}

// Producer publica mensagens de forma síncrona.
type Producer struct {
	logger   *zap.Logger
	producer sarama.SyncProducer
}

func NewProducer(logger *zap.Logger, brokers string) (*Producer, error) {
	producer, err := sarama.NewSyncProducer(strings.Split(brokers, ","), newConfig(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &Producer{logger: logger.With(zap.String("component", "kafka_producer")), producer: producer}, nil
}

func (p *Producer) Publish(ctx context.Context, messages []Message, topic string) error {
	if len(messages) == 0 {
		return nil
	}

	kafkaMessages := make([]*sarama.ProducerMessage, 0, len(messages))
	for _, msg := range messages {
		headers := make([]sarama.RecordHeader, 0, len(msg.Headers))
		for key, value := range msg.Headers {
			headers = append(headers, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
		}

		kafkaMessages = append(kafkaMessages, &sarama.ProducerMessage{
			Topic:   topic,
			Key:     sarama.StringEncoder(msg.Key),
			Value:   sarama.ByteEncoder(msg.Value),
			Headers: headers,
		})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.producer.SendMessages(kafkaMessages); err != nil {
		var producerErrs sarama.ProducerErrors
		if errors.As(err, &producerErrs) {
			return fmt.Errorf("batch send failed: %d/%d messages failed: %w", len(producerErrs), len(kafkaMessages), err)
		}
		return fmt.Errorf("batch send failed: %w", err)
	}

	p.logger.Debug("batch sent", zap.Int("count", len(kafkaMessages)), zap.String("topic", topic))
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

// Consumer consome um tópico em lotes via consumer group.
type Consumer struct {
	logger    *zap.Logger
	group     sarama.ConsumerGroup
	batchSize int
}

func NewConsumer(logger *zap.Logger, brokers string, groupID string, batchSize int) (*Consumer, error) {
	if batchSize <= 0 {
		batchSize = 1
	}

	group, err := sarama.NewConsumerGroup(strings.Split(brokers, ","), groupID, newConfig(batchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		logger:    logger.With(zap.String("component", "kafka_consumer"), zap.String("group_id", groupID)),
		group:     group,
		batchSize: batchSize,
	}, nil
}

// Consume bloqueia até o ctx ser cancelado.
func (c *Consumer) Consume(ctx context.Context, handler Handler, topic string) error {
	consumerHandler := &consumerGroupHandler{
		logger:    c.logger,
		handler:   handler,
		batchSize: c.batchSize,
	}

	for {
		if err := c.group.Consume(ctx, []string{topic}, consumerHandler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.logger.Error("error consuming from topic", zap.String("topic", topic), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled")
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// consumerGroupHandler implementa sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	logger    *zap.Logger
	handler   Handler
	batchSize int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim encerra a claim quando um lote falha. O sarama cancela a sessão e o próximo Consume
// volta do último offset commitado, reentregando o lote inteiro.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	batchTimeout := 2 * time.Second

	messages := make([]Message, 0, h.batchSize)
	timer := time.NewTimer(batchTimeout)
	defer timer.Stop()

	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return h.processBatch(session, messages)
			}

			headers := make(map[string]string, len(message.Headers))
			for _, header := range message.Headers {
				headers[string(header.Key)] = string(header.Value)
			}

			messages = append(messages, Message{
				Key:      string(message.Key),
				Value:    message.Value,
				Headers:  headers,
				internal: message,
			})

			if len(messages) >= h.batchSize {
				if err := h.processBatch(session, messages); err != nil {
					return err
				}
				messages = messages[:0]
				timer.Reset(batchTimeout)
			}

		case <-timer.C:
			if err := h.processBatch(session, messages); err != nil {
				return err
			}
			messages = messages[:0]
			timer.Reset(batchTimeout)

		case <-session.Context().Done():
			return h.processBatch(session, messages)
		}
	}
}

func (h *consumerGroupHandler) processBatch(session sarama.ConsumerGroupSession, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	if err := h.handler(session.Context(), messages); err != nil {
		// Nada do lote é marcado; marcar um lote posterior pularia este offset
		h.logger.Error("handler error for batch, stopping claim", zap.Int("count", len(messages)), zap.Error(err))
		return fmt.Errorf("batch of %d messages failed: %w", len(messages), err)
	}

	for _, msg := range messages {
		if msg.internal != nil {
			session.MarkMessage(msg.internal, "")
		}
	}
	return nil
}

package consumers

import (
	"context"
	"encoding/json"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/infra/kafka"

	"go.uber.org/zap"
)

type ProfileCacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

// ProfileCacheConsumer derruba do redis os perfis alterados, para as listagens não esperarem o TTL.
type ProfileCacheConsumer struct {
	logger      *zap.Logger
	invalidator ProfileCacheInvalidator
}

func NewProfileCacheConsumer(logger *zap.Logger, invalidator ProfileCacheInvalidator) *ProfileCacheConsumer {
	return &ProfileCacheConsumer{
		logger:      logger.With(zap.String("component", "profile_cache_consumer")),
		invalidator: invalidator,
	}
}

func (c *ProfileCacheConsumer) Start(ctx context.Context, source MessageSource, topic string) error {
	c.logger.Info("starting profile cache consumer", zap.String("topic", topic))
	return source.Consume(ctx, c.HandleMessages, topic)
}

// HandleMessages invalida os ids distintos do lote numa única chamada.
func (c *ProfileCacheConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	ids := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, msg := range messages {
		var event domain.ProfileEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("failed to unmarshal profile event", zap.String("key", msg.Key), zap.Error(err))
			continue
		}

		if event.Type != domain.EventProfileUpdated && event.Type != domain.EventProfileDeleted {
			continue
		}
		if event.UserID == "" {
			c.logger.Warn("profile event without user id", zap.String("event_id", event.ID))
			continue
		}

		if _, ok := seen[event.UserID]; ok {
			continue
		}
		seen[event.UserID] = struct{}{}
		ids = append(ids, event.UserID)
	}

	if len(ids) == 0 {
		return nil
	}

	if err := c.invalidator.Invalidate(ctx, ids...); err != nil {
		return fmt.Errorf("ProfileCacheConsumer.HandleMessages - failed to invalidate %d profiles: %w", len(ids), err)
	}

	c.logger.Debug("invalidated cached profiles", zap.Int("count", len(ids)))
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialgraph/src/adapters/kafka/consumers"
	"socialgraph/src/helper/env"
	"socialgraph/src/helper/logger"
	"socialgraph/src/infra/kafka"
	"socialgraph/src/infra/postgres"
	"socialgraph/src/infra/redis"
	"socialgraph/src/repositories"
	"socialgraph/src/services/notifications"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// Providers
		fx.Provide(
			newLogger,
			newProfileRepository,
			newKafkaConsumer,
			newNotificationService,
			newNotificationConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer, startProfileCacheConsumer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New(env.GetString("LOG_LEVEL", "info"), env.GetString("LOG_FORMAT", "json"), "notification-consumer")
}

// O consumer só lê perfis: usa a réplica e o mesmo cache da API.
func newProfileRepository(lc fx.Lifecycle, logger *zap.Logger) (*repositories.CachedProfileRepository, error) {
	client, err := postgres.NewReadWriteClient(
		env.MustGetString("DB_READ_HOST"),
		env.MustGetString("DB_WRITE_HOST"),
		env.GetString("DB_READ_PORT", "5432"),
		env.GetString("DB_WRITE_PORT", "5432"),
		env.MustGetString("DB_NAME"),
		env.MustGetString("DB_USER"),
		env.MustGetString("DB_PASSWORD"),
		env.GetInt("DB_MAX_POOL_CONNECTIONS", 5),
	)
	if err != nil {
		return nil, err
	}

	var cache repositories.ProfileCache
	if redisHosts := env.GetString("REDIS_HOSTS"); redisHosts != "" {
		redisClient := redis.NewRedisClient(
			redisHosts,
			env.GetInt("REDIS_POOL_SIZE", 10),
			time.Duration(env.GetInt("REDIS_TTL_SECONDS", 300))*time.Second,
		)
		cache = redisClient

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return redisClient.Close()
			},
		})
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})

	return repositories.NewCachedProfileRepository(logger, repositories.NewProfileRepository(client.GetReadPool()), cache), nil
}

func newKafkaConsumer(lc fx.Lifecycle, logger *zap.Logger) (*kafka.Consumer, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.GetString("KAFKA_GROUP_ID", "connection-notifications")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 50)

	consumer, err := kafka.NewConsumer(logger, brokers, groupID, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return consumer.Close()
		},
	})

	return consumer, nil
}

func newNotificationService(logger *zap.Logger, profileRepository *repositories.CachedProfileRepository) *notifications.NotificationService {
	return notifications.NewNotificationService(logger, profileRepository, notifications.NewLogMailer(logger))
}

func newNotificationConsumer(logger *zap.Logger, service *notifications.NotificationService) *consumers.NotificationConsumer {
	return consumers.NewNotificationConsumer(logger, service)
}

func startConsumer(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *zap.Logger,
	consumer *consumers.NotificationConsumer,
	kafkaConsumer *kafka.Consumer,
) {
	topic := env.GetString("KAFKA_CONNECTION_EVENTS_TOPIC", "connection-events")

	runInBackground(lc, shutdowner, logger, "notification consumer", func(ctx context.Context) error {
		return consumer.Start(ctx, kafkaConsumer, topic)
	})
}

// startProfileCacheConsumer só sobe com KAFKA_PROFILE_EVENTS_TOPIC definido; sem ele o cache expira só pelo TTL.
func startProfileCacheConsumer(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *zap.Logger,
	profileRepository *repositories.CachedProfileRepository,
) error {
	topic := env.GetString("KAFKA_PROFILE_EVENTS_TOPIC")
	if topic == "" {
		logger.Info("KAFKA_PROFILE_EVENTS_TOPIC not set, cached profiles refresh on TTL only")
		return nil
	}

	kafkaConsumer, err := kafka.NewConsumer(
		logger,
		env.MustGetString("KAFKA_BROKERS"),
		env.GetString("KAFKA_PROFILE_CACHE_GROUP_ID", "connection-profile-cache"),
		env.GetInt("KAFKA_BATCH_SIZE", 50),
	)
	if err != nil {
		return fmt.Errorf("failed to create profile events consumer: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return kafkaConsumer.Close()
		},
	})

	consumer := consumers.NewProfileCacheConsumer(logger, profileRepository)
	runInBackground(lc, shutdowner, logger, "profile cache consumer", func(ctx context.Context) error {
		return consumer.Start(ctx, kafkaConsumer, topic)
	})
	return nil
}

// runInBackground roda o loop de consumo até o OnStop cancelar o ctx.
func runInBackground(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *zap.Logger, name string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := run(ctx); err != nil {
					logger.Error("consumer stopped with error", zap.String("consumer", name), zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()

			select {
			case <-done:
				logger.Info("consumer shutdown complete", zap.String("consumer", name))
			case <-stopCtx.Done():
				logger.Warn("consumer did not stop in time", zap.String("consumer", name))
			}
			_ = logger.Sync()
			return nil
		},
	})
}

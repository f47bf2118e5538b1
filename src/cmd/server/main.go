package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	httpadapter "socialgraph/src/adapters/http"
	"socialgraph/src/domain/entities"
	"socialgraph/src/helper/env"
	"socialgraph/src/helper/logger"
	"socialgraph/src/infra/kafka"
	"socialgraph/src/infra/postgres"
	"socialgraph/src/infra/redis"
	"socialgraph/src/repositories"
	"socialgraph/src/services/connections"
	"socialgraph/src/services/events"
	"socialgraph/src/services/profiles"

	"github.com/brianvoe/gofakeit/v6"
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
			newStores,
			newProfileCache,
			newCachedProfileRepository,
			newNotifier,
			newEnricher,
			newConnectionService,
			newProfileService,
			newSessionProvider,
			newServer,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New(env.GetString("LOG_LEVEL", "info"), env.GetString("LOG_FORMAT", "json"), "connection-graph-api")
}

// stores agrupa as implementações escolhidas por STORE_DRIVER.
type stores struct {
	edges    connections.EdgeStore
	reverse  connections.ReverseIndex
	profiles repositories.ProfileSource
	health   []httpadapter.HealthCheck
}

func newStores(lc fx.Lifecycle, logger *zap.Logger) (*stores, error) {
	driver := env.GetString("STORE_DRIVER", "postgres")

	switch driver {
	case "memory":
		logger.Warn("using in-memory store, data is lost on restart")

		edges := repositories.NewMemoryEdgeRepository()
		return &stores{
			edges:    edges,
			reverse:  edges,
			profiles: repositories.NewMemoryProfileRepository(seedProfiles(env.GetInt("MEMORY_SEED_PROFILES", 0))...),
		}, nil

	case "postgres":
		client, err := newReadWriteClient()
		if err != nil {
			return nil, err
		}

		if env.GetBool("DB_ENSURE_SCHEMA", false) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := postgres.EnsureSchema(ctx, client.GetWritePool()); err != nil {
				client.Close()
				return nil, err
			}
		}

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				client.Close()
				return nil
			},
		})

		return &stores{
			edges:    repositories.NewEdgeRepository(client.GetWritePool()),
			reverse:  repositories.NewReverseEdgeRepository(client.GetReadPool()),
			profiles: repositories.NewProfileRepository(client.GetReadPool()),
			health:   []httpadapter.HealthCheck{{Name: "postgres", Check: client.HealthCheck}},
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (expected postgres or memory)", driver)
	}
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	dbReadHost := env.MustGetString("DB_READ_HOST")
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadPort := env.GetString("DB_READ_PORT", "5432")
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
}

// seedProfiles gera perfis user-1..user-n para o modo memória.
func seedProfiles(n int) []entities.Profile {
	seeded := make([]entities.Profile, 0, n)
	for i := 1; i <= n; i++ {
		privacy := entities.PrivacyPublic
		if i%5 == 0 {
			privacy = entities.PrivacyPrivate
		}

		seeded = append(seeded, entities.Profile{
			ID:        fmt.Sprintf("user-%d", i),
			Name:      gofakeit.Name(),
			Email:     fmt.Sprintf("user-%d@example.com", i),
			Location:  gofakeit.City(),
			Bio:       gofakeit.Sentence(8),
			Privacy:   privacy,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(-5, 0, 0), time.Now()).UTC(),
		})
	}
	return seeded
}

// profileCache.client fica nil quando REDIS_HOSTS está vazio.
type profileCache struct {
	client *redis.RedisClient
}

func newProfileCache(lc fx.Lifecycle) *profileCache {
	redisHosts := env.GetString("REDIS_HOSTS")
	if redisHosts == "" {
		return &profileCache{}
	}

	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 10)
	redisTTL := time.Duration(env.GetInt("REDIS_TTL_SECONDS", 300)) * time.Second
	client := redis.NewRedisClient(redisHosts, redisPoolSize, redisTTL)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return &profileCache{client: client}
}

func newCachedProfileRepository(logger *zap.Logger, stores *stores, cache *profileCache) *repositories.CachedProfileRepository {
	// Interface nil explícita: um *RedisClient nil dentro da interface não seria nil
	var redisCache repositories.ProfileCache
	if cache.client != nil {
		redisCache = cache.client
	}

	return repositories.NewCachedProfileRepository(logger, stores.profiles, redisCache)
}

func newNotifier(lc fx.Lifecycle, logger *zap.Logger) (connections.Notifier, error) {
	brokers := env.GetString("KAFKA_BROKERS")
	if brokers == "" {
		logger.Info("KAFKA_BROKERS not set, connection events go to the log only")
		return events.NewLogNotifier(logger), nil
	}

	producer, err := kafka.NewProducer(logger, brokers)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return producer.Close()
		},
	})

	topic := env.GetString("KAFKA_CONNECTION_EVENTS_TOPIC", "connection-events")
	return events.NewDomainEventPublisher(logger, producer, topic), nil
}

func newEnricher(logger *zap.Logger, profileRepository *repositories.CachedProfileRepository) *profiles.Enricher {
	return profiles.NewEnricher(logger, profileRepository, env.GetInt("ENRICHMENT_CONCURRENCY", 8))
}

func newConnectionService(
	logger *zap.Logger,
	stores *stores,
	enricher *profiles.Enricher,
	notifier connections.Notifier,
) *connections.ConnectionService {
	return connections.NewConnectionService(logger, stores.edges, stores.reverse, enricher, notifier)
}

func newProfileService(
	profileRepository *repositories.CachedProfileRepository,
	connectionService *connections.ConnectionService,
) *profiles.ProfileService {
	return profiles.NewProfileService(profileRepository, connectionService)
}

func newSessionProvider() *httpadapter.SessionProvider {
	return httpadapter.NewSessionProvider(env.MustGetString("JWT_SECRET"), env.GetString("JWT_ISSUER"))
}

func newServer(
	logger *zap.Logger,
	stores *stores,
	cache *profileCache,
	connectionService *connections.ConnectionService,
	profileService *profiles.ProfileService,
	sessions *httpadapter.SessionProvider,
) *httpadapter.Server {
	config := httpadapter.ServerConfig{
		Port:               env.GetInt("SERVER_PORT", 8888),
		RequestTimeout:     env.GetDuration("REQUEST_TIMEOUT", 10*time.Second),
		RateLimitRequests:  env.GetInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:    env.GetDuration("RATE_LIMIT_WINDOW", time.Minute),
		CORSAllowedOrigins: env.GetList("CORS_ALLOWED_ORIGINS"),
	}

	health := append([]httpadapter.HealthCheck{}, stores.health...)
	if cache.client != nil {
		health = append(health, httpadapter.HealthCheck{Name: "redis", Check: cache.client.HealthCheck})
	}

	return httpadapter.NewServer(config, logger, connectionService, profileService, sessions, health...)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *zap.Logger, srv *httpadapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					logger.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server forced to shutdown", zap.Error(err))
				return err
			}
			logger.Info("server exited gracefully")
			_ = logger.Sync()
			return nil
		},
	})
}

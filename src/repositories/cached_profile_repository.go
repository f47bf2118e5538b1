package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ProfileSource é a origem autoritativa dos perfis (Postgres ou memória).
type ProfileSource interface {
	GetByID(ctx context.Context, id string) (*entities.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entities.Profile, error)
}

// ProfileCache é o subconjunto do cliente redis usado aqui.
type ProfileCache interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	SetKey(ctx context.Context, key string, value string) error
	Invalidate(ctx context.Context, keys []string) error
}

var ErrProfileSourceUnavailable = errors.New("profile source unavailable")

// CachedProfileRepository faz read-through no redis e protege a origem com um circuit breaker.
// Cache nil desliga o redis; falhas de cache nunca falham a leitura.
type CachedProfileRepository struct {
	logger  *zap.Logger
	source  ProfileSource
	cache   ProfileCache
	breaker *gobreaker.CircuitBreaker[*entities.Profile]
}

func NewCachedProfileRepository(logger *zap.Logger, source ProfileSource, cache ProfileCache) *CachedProfileRepository {
	logger = logger.With(zap.String("component", "cached_profile_repository"))

	breaker := gobreaker.NewCircuitBreaker[*entities.Profile](gobreaker.Settings{
		Name:        "profile-source",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Perfil inexistente é resposta válida, não falha da origem
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrProfileNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &CachedProfileRepository{
		logger:  logger,
		source:  source,
		cache:   cache,
		breaker: breaker,
	}
}

func (r *CachedProfileRepository) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	cacheKey := r.generateCacheKey(id)

	if r.cache != nil {
		cached, found, err := r.getFromCache(ctx, cacheKey)
		switch {
		case err != nil:
			// Segue para a origem
			metrics.ProfileCacheLookups.WithLabelValues("error").Inc()
			r.logger.Warn("cache error", zap.String("key", cacheKey), zap.Error(err))
		case found:
			metrics.ProfileCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	profile, err := r.breaker.Execute(func() (*entities.Profile, error) {
		return r.source.GetByID(ctx, id)
	})
	if err != nil {
		return nil, breakerError("GetByID", err)
	}

	if r.cache != nil {
		go func(profile entities.Profile) {
			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			r.setInCache(ctxWithTimeout, cacheKey, profile)
		}(*profile)
	}

	return profile, nil
}

// GetByEmail não passa pelo cache, a chave do cache é o id.
func (r *CachedProfileRepository) GetByEmail(ctx context.Context, email string) (*entities.Profile, error) {
	profile, err := r.breaker.Execute(func() (*entities.Profile, error) {
		return r.source.GetByEmail(ctx, email)
	})
	if err != nil {
		return nil, breakerError("GetByEmail", err)
	}
	return profile, nil
}

// breakerError marca a recusa do breaker aberto como ErrProfileSourceUnavailable.
func breakerError(operation string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("CachedProfileRepository.%s - %w: %w", operation, ErrProfileSourceUnavailable, err)
	}
	return err
}

// Invalidate remove os perfis do cache após mudança no componente de perfil.
func (r *CachedProfileRepository) Invalidate(ctx context.Context, ids ...string) error {
	if r.cache == nil || len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.generateCacheKey(id)
	}

	return r.cache.Invalidate(ctx, keys)
}

func (r *CachedProfileRepository) generateCacheKey(id string) string {
	return fmt.Sprintf("profile:v1:%s", id)
}

func (r *CachedProfileRepository) getFromCache(ctx context.Context, cacheKey string) (*entities.Profile, bool, error) {
	cachedJSON, found, err := r.cache.GetKey(ctx, cacheKey)
	if !found || err != nil {
		return nil, found, err
	}

	var profile entities.Profile
	if err := json.Unmarshal([]byte(cachedJSON), &profile); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}

	return &profile, true, nil
}

func (r *CachedProfileRepository) setInCache(ctx context.Context, cacheKey string, profile entities.Profile) {
	dataJSON, err := json.Marshal(profile)
	if err != nil {
		r.logger.Warn("failed to marshal profile for cache", zap.String("key", cacheKey), zap.Error(err))
		return
	}

	if err := r.cache.SetKey(ctx, cacheKey, string(dataJSON)); err != nil {
		r.logger.Warn("failed to set cache", zap.String("key", cacheKey), zap.Error(err))
		return
	}

	r.logger.Debug("cache set", zap.String("key", cacheKey))
}

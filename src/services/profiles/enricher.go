package profiles

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (*entities.Profile, error)
}

const defaultConcurrency = 8

// Enricher junta as arestas de uma listagem aos perfis das contrapartes.
// Aresta cujo perfil não resolve é descartada da listagem, nunca falha a chamada inteira.
type Enricher struct {
	logger      *zap.Logger
	profiles    ProfileLookup
	concurrency int
}

func NewEnricher(logger *zap.Logger, profiles ProfileLookup, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Enricher{
		logger:      logger.With(zap.String("component", "profile_enricher")),
		profiles:    profiles,
		concurrency: concurrency,
	}
}

// Enrich resolve os perfis em paralelo (um lookup por contraparte distinta) e devolve as arestas
// ordenadas por timestamp decrescente. Só devolve erro quando o ctx é cancelado.
func (e *Enricher) Enrich(
	ctx context.Context,
	view string,
	edges []entities.Edge,
	counterpart func(entities.Edge) string,
	timestamp func(entities.Edge) time.Time,
) ([]domain.EnrichedEdge, error) {
	if len(edges) == 0 {
		return []domain.EnrichedEdge{}, nil
	}

	ids := make([]string, 0, len(edges))
	seen := make(map[string]struct{}, len(edges))
	for _, edge := range edges {
		id := counterpart(edge)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var mu sync.Mutex
	resolved := make(map[string]entities.Profile, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			profile, err := e.profiles.GetByID(gctx, id)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if !errors.Is(err, domain.ErrProfileNotFound) {
					e.logger.Warn("profile lookup failed", zap.String("view", view), zap.String("user_id", id), zap.Error(err))
				}
				return nil
			}
			if profile == nil {
				return nil
			}

			mu.Lock()
			resolved[id] = *profile
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	enriched := make([]domain.EnrichedEdge, 0, len(edges))
	for _, edge := range edges {
		id := counterpart(edge)
		profile, ok := resolved[id]
		if !ok {
			metrics.EnrichmentDroppedEdges.WithLabelValues(view).Inc()
			e.logger.Warn("dropping edge with unresolved profile",
				zap.String("view", view),
				zap.String("owner_id", edge.Owner),
				zap.String("peer_id", edge.Peer))
			continue
		}

		enriched = append(enriched, domain.EnrichedEdge{
			Edge:        edge,
			Counterpart: id,
			Profile:     domain.NewProfileSummary(profile),
		})
	}

	// Mais recente primeiro; empate desempata pela contraparte para a ordem ser estável
	slices.SortStableFunc(enriched, func(a, b domain.EnrichedEdge) int {
		if c := timestamp(b.Edge).Compare(timestamp(a.Edge)); c != 0 {
			return c
		}
		return cmp.Compare(a.Counterpart, b.Counterpart)
	})

	return enriched, nil
}

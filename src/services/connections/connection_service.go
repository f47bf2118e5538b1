package connections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EdgeStore é o armazenamento de arestas direcionadas, chaveado por (owner, peer).
// Get devolve (nil, nil) quando a aresta não existe.
type EdgeStore interface {
	Get(ctx context.Context, owner string, peer string) (*entities.Edge, error)
	Put(ctx context.Context, edge entities.Edge) error
	Delete(ctx context.Context, owner string, peer string) error
	QueryByOwner(ctx context.Context, owner string, states ...entities.EdgeState) ([]entities.Edge, error)
}

// ReverseIndex responde "quem aponta para mim". Resultado consultivo, nunca usado para decidir uma escrita.
type ReverseIndex interface {
	QueryByPeer(ctx context.Context, peer string, states ...entities.EdgeState) ([]entities.Edge, error)
}

type Enricher interface {
	Enrich(ctx context.Context, view string, edges []entities.Edge, counterpart func(entities.Edge) string, timestamp func(entities.Edge) time.Time) ([]domain.EnrichedEdge, error)
}

// Notifier recebe os eventos de transição. Best-effort: erro é só logado.
type Notifier interface {
	Notify(ctx context.Context, event domain.ConnectionEvent) error
}

// ConnectionService é a máquina de estados das conexões, o único componente que cria, altera ou apaga arestas.
type ConnectionService struct {
	logger   *zap.Logger
	edges    EdgeStore
	reverse  ReverseIndex
	enricher Enricher
	notifier Notifier
	now      func() time.Time
}

func NewConnectionService(
	logger *zap.Logger,
	edges EdgeStore,
	reverse ReverseIndex,
	enricher Enricher,
	notifier Notifier,
) *ConnectionService {
	return &ConnectionService{
		logger:   logger.With(zap.String("component", "connection_service")),
		edges:    edges,
		reverse:  reverse,
		enricher: enricher,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock troca a fonte de tempo (testes).
func (s *ConnectionService) WithClock(now func() time.Time) *ConnectionService {
	s.now = now
	return s
}

// readPair lê edge(a->b) e edge(b->a) em paralelo, ambas pela chave primária.
func (s *ConnectionService) readPair(ctx context.Context, a string, b string) (*entities.Edge, *entities.Edge, error) {
	var outbound, inbound *entities.Edge

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		outbound, err = s.edges.Get(gctx, a, b)
		return err
	})
	g.Go(func() error {
		var err error
		inbound, err = s.edges.Get(gctx, b, a)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return outbound, inbound, nil
}

func (s *ConnectionService) validatePair(current string, other string) error {
	if err := domain.ValidateUserID(current); err != nil {
		return err
	}
	return domain.ValidateUserID(other)
}

// storeError converte falha de storage/transporte em ErrStoreUnavailable mantendo a causa para o log.
func storeError(operation string, err error) error {
	return fmt.Errorf("ConnectionService.%s - %w: %w", operation, domain.ErrStoreUnavailable, err)
}

func (s *ConnectionService) record(operation string, err error) {
	metrics.ConnectionOperations.WithLabelValues(operation, Outcome(err)).Inc()

	if errors.Is(err, domain.ErrStoreUnavailable) {
		s.logger.Error("store failure", zap.String("operation", operation), zap.Error(err))
	}
}

// Outcome devolve um rótulo estável para o resultado de uma operação.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSelfConnection):
		return "self_connection"
	case errors.Is(err, domain.ErrInvalidUserID):
		return "invalid_user_id"
	case errors.Is(err, domain.ErrAlreadyRequested):
		return "already_requested"
	case errors.Is(err, domain.ErrAlreadyConnected):
		return "already_connected"
	case errors.Is(err, domain.ErrIncomingRequestExists):
		return "incoming_request_exists"
	case errors.Is(err, domain.ErrNoPendingRequest):
		return "no_pending_request"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}

func (s *ConnectionService) notify(ctx context.Context, eventType domain.ConnectionEventType, actor string, subject string) {
	if s.notifier == nil {
		return
	}

	event := domain.ConnectionEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ActorID:    actor,
		SubjectID:  subject,
		OccurredAt: s.now(),
	}

	if err := s.notifier.Notify(ctx, event); err != nil {
		metrics.NotificationFailures.WithLabelValues(string(eventType)).Inc()
		s.logger.Warn("failed to notify connection event",
			zap.String("event_type", string(eventType)),
			zap.String("actor_id", actor),
			zap.String("subject_id", subject),
			zap.Error(err))
	}
}

package connections

import (
	"context"
	"fmt"
	"time"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/metrics"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const reverseEdgeWriteAttempts = 3

// AcceptConnection aceita o pedido requester->currentUser.
//
// São duas escritas sem atomicidade entre elas: primeiro a aresta de entrada vira Connected,
// depois a aresta reversa currentUser->requester é criada. A segunda escrita é re-tentada algumas vezes;
// se ainda assim falhar, a operação é reportada como sucesso e a assimetria fica registrada em log e
// métrica. StatusOf e ListConnections olham as duas direções, e um novo Accept repara a aresta que falta.
//
// Exceção à regra "só Pending pode ser aceito": com a aresta de entrada já Connected e a reversa ausente,
// o Accept não devolve ErrNoPendingRequest, ele grava a aresta reversa e retorna sucesso.
// Com as duas arestas Connected devolve ErrNoPendingRequest normalmente.
func (s *ConnectionService) AcceptConnection(ctx context.Context, currentUser string, requester string) (err error) {
	defer func() { s.record("accept", err) }()

	if err := s.validatePair(currentUser, requester); err != nil {
		return err
	}

	inbound, err := s.edges.Get(ctx, requester, currentUser)
	if err != nil {
		return storeError("AcceptConnection", err)
	}

	if inbound == nil {
		return domain.ErrNoPendingRequest
	}

	if inbound.Is(entities.EdgeStateConnected) {
		return s.repairReverseEdge(ctx, currentUser, requester)
	}

	if !inbound.Is(entities.EdgeStatePending) {
		return domain.ErrNoPendingRequest
	}

	now := s.now()
	inbound.State = entities.EdgeStateConnected
	inbound.UpdatedAt = &now

	if err := s.edges.Put(ctx, *inbound); err != nil {
		return storeError("AcceptConnection", fmt.Errorf("transitioning inbound edge: %w", err))
	}

	s.writeReverseEdge(ctx, currentUser, requester, now)
	s.notify(ctx, domain.EventConnectionAccepted, currentUser, requester)

	return nil
}

// repairReverseEdge trata o retry de um Accept que parou entre as duas escritas.
// Com a aresta reversa já Connected não há pedido pendente.
func (s *ConnectionService) repairReverseEdge(ctx context.Context, currentUser string, requester string) error {
	outbound, err := s.edges.Get(ctx, currentUser, requester)
	if err != nil {
		return storeError("AcceptConnection", err)
	}

	if outbound != nil && outbound.Is(entities.EdgeStateConnected) {
		return domain.ErrNoPendingRequest
	}

	s.logger.Info("repairing asymmetric connection",
		zap.String("current_user_id", currentUser),
		zap.String("requester_id", requester))

	s.writeReverseEdge(ctx, currentUser, requester, s.now())
	return nil
}

func (s *ConnectionService) writeReverseEdge(ctx context.Context, currentUser string, requester string, now time.Time) {
	reverse := entities.Edge{
		Owner:     currentUser,
		Peer:      requester,
		State:     entities.EdgeStateConnected,
		CreatedAt: now,
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(50*time.Millisecond),
			backoff.WithMaxInterval(500*time.Millisecond),
		), reverseEdgeWriteAttempts-1),
		ctx,
	)

	err := backoff.Retry(func() error {
		return s.edges.Put(ctx, reverse)
	}, policy)
	if err != nil {
		metrics.ConnectionPartialWrites.Inc()
		s.logger.Error("reverse edge write failed after accept, connection is asymmetric",
			zap.String("current_user_id", currentUser),
			zap.String("requester_id", requester),
			zap.Error(err))
	}
}

package connections

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

// RequestConnection cria a aresta requester->target como Pending.
//
// Um pedido já Ignored é reaberto: a aresta volta para Pending com novo createdAt.
// Se o alvo já pediu conexão ao requester, falha com ErrIncomingRequestExists para que o cliente aceite.
func (s *ConnectionService) RequestConnection(ctx context.Context, requester string, target string) (err error) {
	defer func() { s.record("request", err) }()

	if requester == target {
		return domain.ErrSelfConnection
	}

	if err := s.validatePair(requester, target); err != nil {
		return err
	}

	outbound, inbound, err := s.readPair(ctx, requester, target)
	if err != nil {
		return storeError("RequestConnection", err)
	}

	if outbound != nil {
		switch outbound.State {
		case entities.EdgeStatePending:
			return domain.ErrAlreadyRequested
		case entities.EdgeStateConnected:
			return domain.ErrAlreadyConnected
		}
	}

	if inbound != nil {
		switch inbound.State {
		case entities.EdgeStatePending:
			return domain.ErrIncomingRequestExists
		case entities.EdgeStateConnected:
			return domain.ErrAlreadyConnected
		}
	}

	edge := entities.Edge{
		Owner:     requester,
		Peer:      target,
		State:     entities.EdgeStatePending,
		CreatedAt: s.now(),
	}

	if err := s.edges.Put(ctx, edge); err != nil {
		return storeError("RequestConnection", fmt.Errorf("writing pending edge: %w", err))
	}

	// Best-effort, não desfaz a escrita
	s.notify(ctx, domain.EventConnectionRequested, requester, target)

	return nil
}

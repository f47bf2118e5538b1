package connections

import (
	"context"
	"fmt"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
)

// IgnoreConnection marca o pedido requester->currentUser como Ignored. A aresta nunca é apagada.
func (s *ConnectionService) IgnoreConnection(ctx context.Context, currentUser string, requester string) (err error) {
	defer func() { s.record("ignore", err) }()

	if err := s.validatePair(currentUser, requester); err != nil {
		return err
	}

	inbound, err := s.edges.Get(ctx, requester, currentUser)
	if err != nil {
		return storeError("IgnoreConnection", err)
	}

	if inbound == nil || !inbound.Is(entities.EdgeStatePending) {
		return domain.ErrNoPendingRequest
	}

	now := s.now()
	inbound.State = entities.EdgeStateIgnored
	inbound.UpdatedAt = &now

	if err := s.edges.Put(ctx, *inbound); err != nil {
		return storeError("IgnoreConnection", fmt.Errorf("transitioning inbound edge: %w", err))
	}

	s.notify(ctx, domain.EventConnectionIgnored, currentUser, requester)

	return nil
}

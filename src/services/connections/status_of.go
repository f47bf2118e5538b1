package connections

import (
	"context"

	"socialgraph/src/domain"
)

// StatusOf deriva o status sempre das duas arestas, sem cache.
func (s *ConnectionService) StatusOf(ctx context.Context, currentUser string, other string) (status domain.ConnectionStatus, err error) {
	defer func() { s.record("status", err) }()

	if err := s.validatePair(currentUser, other); err != nil {
		return domain.StatusNone, err
	}

	if currentUser == other {
		return domain.StatusNone, nil
	}

	outbound, inbound, err := s.readPair(ctx, currentUser, other)
	if err != nil {
		return domain.StatusNone, storeError("StatusOf", err)
	}

	return domain.DeriveStatus(outbound, inbound), nil
}

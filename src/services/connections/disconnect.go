package connections

import (
	"context"
	"fmt"

	"socialgraph/src/domain"

	"golang.org/x/sync/errgroup"
)

// Disconnect apaga as duas direções. As duas remoções são sempre tentadas e apagar o que não existe não é erro.
func (s *ConnectionService) Disconnect(ctx context.Context, currentUser string, other string) (err error) {
	defer func() { s.record("disconnect", err) }()

	if err := s.validatePair(currentUser, other); err != nil {
		return err
	}

	// Sem WithContext: a falha de um lado não pode cancelar a remoção do outro
	var g errgroup.Group
	g.Go(func() error {
		if err := s.edges.Delete(ctx, currentUser, other); err != nil {
			return fmt.Errorf("deleting %s->%s: %w", currentUser, other, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.edges.Delete(ctx, other, currentUser); err != nil {
			return fmt.Errorf("deleting %s->%s: %w", other, currentUser, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return storeError("Disconnect", err)
	}

	s.notify(ctx, domain.EventConnectionDisconnected, currentUser, other)

	return nil
}

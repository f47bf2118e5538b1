package stubs

import (
	"time"

	"socialgraph/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type EdgeStub struct {
	edge entities.Edge
}

// NewEdgeStub cria uma aresta Pending entre dois ids aleatórios.
func NewEdgeStub() EdgeStub {
	now := time.Now().UTC().Truncate(time.Microsecond)

	edge := entities.Edge{
		Owner:     gofakeit.UUID(),
		Peer:      gofakeit.UUID(),
		State:     entities.EdgeStatePending,
		CreatedAt: now,
	}

	return EdgeStub{edge: edge}
}

func (es EdgeStub) WithOwner(owner string) EdgeStub {
	es.edge.Owner = owner
	return es
}

func (es EdgeStub) WithPeer(peer string) EdgeStub {
	es.edge.Peer = peer
	return es
}

func (es EdgeStub) WithState(state entities.EdgeState) EdgeStub {
	es.edge.State = state
	return es
}

func (es EdgeStub) WithCreatedAt(createdAt time.Time) EdgeStub {
	es.edge.CreatedAt = createdAt
	return es
}

func (es EdgeStub) WithUpdatedAt(updatedAt time.Time) EdgeStub {
	es.edge.UpdatedAt = &updatedAt
	return es
}

func (es EdgeStub) Get() entities.Edge {
	return es.edge
}

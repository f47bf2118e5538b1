package repositories

import (
	"context"
	"slices"
	"sync"

	"socialgraph/src/domain/entities"
)

type edgeKey struct {
	owner string
	peer  string
}

// MemoryEdgeRepository implementa o Edge Store e o Reverse Index em memória.
// Usado com STORE_DRIVER=memory e nos testes; permite injetar falhas por operação.
type MemoryEdgeRepository struct {
	mu     sync.RWMutex
	edges  map[edgeKey]entities.Edge
	byPeer map[string]map[string]struct{}

	failures map[string]error
	calls    map[string]int
}

const (
	OpGet          = "get"
	OpPut          = "put"
	OpDelete       = "delete"
	OpQueryByOwner = "query_by_owner"
	OpQueryByPeer  = "query_by_peer"
)

func NewMemoryEdgeRepository() *MemoryEdgeRepository {
	return &MemoryEdgeRepository{
		edges:    make(map[edgeKey]entities.Edge),
		byPeer:   make(map[string]map[string]struct{}),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
}

// FailOn faz a operação op devolver err até ser limpa com FailOn(op, nil).
func (m *MemoryEdgeRepository) FailOn(op string, err error) *MemoryEdgeRepository {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, op)
	} else {
		m.failures[op] = err
	}
	return m
}

func (m *MemoryEdgeRepository) Calls(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// Len devolve o número de arestas armazenadas.
func (m *MemoryEdgeRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.edges)
}

func (m *MemoryEdgeRepository) track(op string) error {
	m.calls[op]++
	return m.failures[op]
}

func (m *MemoryEdgeRepository) Get(ctx context.Context, owner string, peer string) (*entities.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track(OpGet); err != nil {
		return nil, err
	}

	edge, ok := m.edges[edgeKey{owner: owner, peer: peer}]
	if !ok {
		return nil, nil
	}
	return cloneEdge(edge), nil
}

func (m *MemoryEdgeRepository) Put(ctx context.Context, edge entities.Edge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track(OpPut); err != nil {
		return err
	}

	m.edges[edgeKey{owner: edge.Owner, peer: edge.Peer}] = *cloneEdge(edge)

	owners, ok := m.byPeer[edge.Peer]
	if !ok {
		owners = make(map[string]struct{})
		m.byPeer[edge.Peer] = owners
	}
	owners[edge.Owner] = struct{}{}

	return nil
}

func (m *MemoryEdgeRepository) Delete(ctx context.Context, owner string, peer string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track(OpDelete); err != nil {
		return err
	}

	delete(m.edges, edgeKey{owner: owner, peer: peer})
	if owners, ok := m.byPeer[peer]; ok {
		delete(owners, owner)
		if len(owners) == 0 {
			delete(m.byPeer, peer)
		}
	}

	return nil
}

func (m *MemoryEdgeRepository) QueryByOwner(ctx context.Context, owner string, states ...entities.EdgeState) ([]entities.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track(OpQueryByOwner); err != nil {
		return nil, err
	}

	edges := make([]entities.Edge, 0)
	for key, edge := range m.edges {
		if key.owner == owner && matchesState(edge, states) {
			edges = append(edges, *cloneEdge(edge))
		}
	}
	return edges, nil
}

func (m *MemoryEdgeRepository) QueryByPeer(ctx context.Context, peer string, states ...entities.EdgeState) ([]entities.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.track(OpQueryByPeer); err != nil {
		return nil, err
	}

	edges := make([]entities.Edge, 0)
	for owner := range m.byPeer[peer] {
		edge, ok := m.edges[edgeKey{owner: owner, peer: peer}]
		if ok && matchesState(edge, states) {
			edges = append(edges, *cloneEdge(edge))
		}
	}
	return edges, nil
}

func matchesState(edge entities.Edge, states []entities.EdgeState) bool {
	return len(states) == 0 || slices.Contains(states, edge.State)
}

func cloneEdge(edge entities.Edge) *entities.Edge {
	clone := edge
	if edge.UpdatedAt != nil {
		updatedAt := *edge.UpdatedAt
		clone.UpdatedAt = &updatedAt
	}
	return &clone
}

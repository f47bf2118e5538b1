package repositories

import (
	"context"
	"fmt"

	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EdgeRepository é o Directed Edge Store: uma linha por par ordenado (owner, peer).
// Usa o pool de escrita também para leituras, leituras por chave primária são a fonte de verdade das transições.
type EdgeRepository struct {
	writePool *pgxpool.Pool
}

func NewEdgeRepository(writePool *pgxpool.Pool) *EdgeRepository {
	return &EdgeRepository{writePool: writePool}
}

const edgeColumns = `owner_id, peer_id, state, created_at, updated_at`

func (r *EdgeRepository) Get(ctx context.Context, owner string, peer string) (*entities.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM connections WHERE owner_id = $1 AND peer_id = $2`

	edge, err := scanEdge(r.writePool.QueryRow(ctx, query, owner, peer))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("EdgeRepository.Get - failed to read edge %s->%s: %w", owner, peer, err)
	}

	return edge, nil
}

// Put sobrescreve a linha inteira; o controle de read-check-write é de quem chama.
func (r *EdgeRepository) Put(ctx context.Context, edge entities.Edge) error {
	query := `
		INSERT INTO
			connections (owner_id, peer_id, state, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, peer_id) DO UPDATE SET
			state = excluded.state,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at;
	`

	_, err := r.writePool.Exec(ctx, query, edge.Owner, edge.Peer, string(edge.State), edge.CreatedAt.UTC(), postgres.NewNullTime(edge.UpdatedAt))
	if err != nil {
		return fmt.Errorf("EdgeRepository.Put - failed to write edge %s->%s: %w", edge.Owner, edge.Peer, err)
	}

	return nil
}

// Delete é idempotente: apagar uma aresta inexistente não é erro.
func (r *EdgeRepository) Delete(ctx context.Context, owner string, peer string) error {
	_, err := r.writePool.Exec(ctx, `DELETE FROM connections WHERE owner_id = $1 AND peer_id = $2`, owner, peer)
	if err != nil {
		return fmt.Errorf("EdgeRepository.Delete - failed to delete edge %s->%s: %w", owner, peer, err)
	}

	return nil
}

func (r *EdgeRepository) QueryByOwner(ctx context.Context, owner string, states ...entities.EdgeState) ([]entities.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM connections WHERE owner_id = $1 AND (cardinality($2::text[]) = 0 OR state = ANY($2))`

	rows, err := r.writePool.Query(ctx, query, owner, stateArgs(states))
	if err != nil {
		return nil, fmt.Errorf("EdgeRepository.QueryByOwner - query failed: %w", err)
	}

	edges, err := collectEdges(rows)
	if err != nil {
		return nil, fmt.Errorf("EdgeRepository.QueryByOwner - %w", err)
	}

	return edges, nil
}

// ReverseEdgeRepository é o Reverse Index: consultas por peer no índice (peer_id, owner_id).
// Lê da réplica, então o resultado pode estar atrasado e serve só para exibição.
type ReverseEdgeRepository struct {
	readPool *pgxpool.Pool
}

func NewReverseEdgeRepository(readPool *pgxpool.Pool) *ReverseEdgeRepository {
	return &ReverseEdgeRepository{readPool: readPool}
}

func (r *ReverseEdgeRepository) QueryByPeer(ctx context.Context, peer string, states ...entities.EdgeState) ([]entities.Edge, error) {
	query := `SELECT ` + edgeColumns + ` FROM connections WHERE peer_id = $1 AND (cardinality($2::text[]) = 0 OR state = ANY($2))`

	rows, err := r.readPool.Query(ctx, query, peer, stateArgs(states))
	if err != nil {
		return nil, fmt.Errorf("ReverseEdgeRepository.QueryByPeer - query failed: %w", err)
	}

	edges, err := collectEdges(rows)
	if err != nil {
		return nil, fmt.Errorf("ReverseEdgeRepository.QueryByPeer - %w", err)
	}

	return edges, nil
}

func stateArgs(states []entities.EdgeState) []string {
	args := make([]string, 0, len(states))
	for _, state := range states {
		args = append(args, string(state))
	}
	return args
}

func scanEdge(row pgx.Row) (*entities.Edge, error) {
	var edge entities.Edge
	var state string
	var updatedAt pgtype.Timestamptz

	if err := row.Scan(&edge.Owner, &edge.Peer, &state, &edge.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}

	edge.State = entities.EdgeState(state)
	edge.CreatedAt = edge.CreatedAt.UTC()
	edge.UpdatedAt = postgres.TimePtr(updatedAt)

	return &edge, nil
}

func collectEdges(rows pgx.Rows) ([]entities.Edge, error) {
	defer rows.Close()

	edges := make([]entities.Edge, 0)
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, *edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edge rows: %w", err)
	}

	return edges, nil
}

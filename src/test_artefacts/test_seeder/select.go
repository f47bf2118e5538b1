package test_seeder

import (
	"context"

	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgtype"
)

// SelectEdgesByUser retrieves every connection row where the user is owner or peer
func (ts TestSeeder) SelectEdgesByUser(ctx context.Context, userID string) ([]entities.Edge, error) {
	query := `SELECT owner_id, peer_id, state, created_at, updated_at
			  FROM connections
			  WHERE owner_id = $1 OR peer_id = $1
			  ORDER BY owner_id, peer_id`

	rows, err := ts.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []entities.Edge
	for rows.Next() {
		var (
			edge      entities.Edge
			state     string
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&edge.Owner, &edge.Peer, &state, &edge.CreatedAt, &updatedAt); err != nil {
			return nil, err
		}
		edge.State = entities.EdgeState(state)
		edge.UpdatedAt = postgres.TimePtr(updatedAt)
		edges = append(edges, edge)
	}

	return edges, rows.Err()
}

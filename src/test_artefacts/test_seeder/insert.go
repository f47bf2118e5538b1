package test_seeder

import (
	"context"
	"fmt"

	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"
)

// InsertProfile inserts a user row for testing
func (ts TestSeeder) InsertProfile(ctx context.Context, profile entities.Profile) {
	query := `
		INSERT INTO users (id, name, email, location, bio, profile_privacy, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)`

	_, err := ts.pool.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.Location,
		profile.Bio,
		string(profile.Privacy),
		profile.CreatedAt,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertProfile failed: %v", err))
	}
}

// InsertEdge writes a connection row directly, bypassing the state machine
func (ts TestSeeder) InsertEdge(ctx context.Context, edge entities.Edge) {
	query := `
		INSERT INTO connections (owner_id, peer_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := ts.pool.Exec(ctx, query,
		edge.Owner,
		edge.Peer,
		string(edge.State),
		edge.CreatedAt,
		postgres.NewNullTime(edge.UpdatedAt),
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertEdge failed: %v", err))
	}
}

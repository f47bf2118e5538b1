package repositories

import (
	"context"
	"fmt"
	"strings"

	"socialgraph/src/domain"
	"socialgraph/src/domain/entities"
	"socialgraph/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository lê a tabela users, que pertence ao componente de perfil.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `id, name, email, COALESCE(location, ''), COALESCE(bio, ''), profile_privacy, created_at`

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entities.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id)

	profile, err := scanProfile(row)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("ProfileRepository.GetByID - user %s: %w", id, domain.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("ProfileRepository.GetByID - query failed: %w", err)
	}

	return profile, nil
}

// GetByEmail usa o email como chave alternativa (comparação sem diferenciar maiúsculas).
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*entities.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE lower(email) = $1`, strings.ToLower(email))

	profile, err := scanProfile(row)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("ProfileRepository.GetByEmail - user %s: %w", email, domain.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("ProfileRepository.GetByEmail - query failed: %w", err)
	}

	return profile, nil
}

func scanProfile(row pgx.Row) (*entities.Profile, error) {
	var profile entities.Profile
	var privacy string

	if err := row.Scan(&profile.ID, &profile.Name, &profile.Email, &profile.Location, &profile.Bio, &privacy, &profile.CreatedAt); err != nil {
		return nil, err
	}

	profile.Privacy = entities.Privacy(privacy)
	return &profile, nil
}

package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/dbx"
	"github.com/recipebox/recipebox/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, username, full_name, avatar_url, bio, website, location, created_at, updated_at
		 FROM profiles
		 WHERE id = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	query :=
		`SELECT id, username, full_name, avatar_url, bio, website, location, created_at, updated_at
		 FROM profiles
		 WHERE username = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) Insert(ctx context.Context, profile *models.Profile) error {
	query :=
		`INSERT INTO profiles (id, username, full_name, avatar_url, bio, website, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.Username, profile.FullName, profile.AvatarURL,
		profile.Bio, profile.Website, profile.Location)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query :=
		`UPDATE profiles
		 SET username = $2, full_name = $3, avatar_url = $4, bio = $5, website = $6, location = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING id, username, full_name, avatar_url, bio, website, location, created_at, updated_at
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query,
		profile.ID, profile.Username, profile.FullName, profile.AvatarURL,
		profile.Bio, profile.Website, profile.Location))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL,
		&p.Bio, &p.Website, &p.Location, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

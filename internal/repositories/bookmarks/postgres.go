package bookmarks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

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

func (r *PostgresRepository) Add(ctx context.Context, userID, recipeID string) error {
	query :=
		`INSERT INTO bookmarks (id, user_id, recipe_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, recipe_id) DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, recipeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, recipeID string) error {
	query := `DELETE FROM bookmarks WHERE user_id = $1 AND recipe_id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, recipeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, userID, recipeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = $1 AND recipe_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, recipeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CountForRecipe(ctx context.Context, recipeID string) (int64, error) {
	query := `SELECT count(*) FROM bookmarks WHERE recipe_id = $1`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, recipeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListByUser returns the bookmarked recipes, most recently saved first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error) {
	query :=
		`SELECT r.id, r.user_id, r.title, r.description, r.image_url, r.ingredients, r.steps, r.category, r.tags,
		        r.prep_time, r.cook_time, r.servings, r.difficulty, r.is_public, r.created_at, r.updated_at
		 FROM bookmarks b
		 JOIN recipes r ON r.id = b.recipe_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Recipe
	for rows.Next() {
		rec := &models.Recipe{}
		var ingredients, steps, tags []byte
		err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.ImageURL,
			&ingredients, &steps, &rec.Category, &tags,
			&rec.PrepTime, &rec.CookTime, &rec.Servings, &rec.Difficulty, &rec.IsPublic,
			&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := decodeList(ingredients, &rec.Ingredients); err != nil {
			return nil, err
		}
		if err := decodeList(steps, &rec.Steps); err != nil {
			return nil, err
		}
		if err := decodeList(tags, &rec.Tags); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func decodeList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = nil
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding list column: %w", err)
	}
	return nil
}

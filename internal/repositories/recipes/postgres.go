package recipes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/dbx"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/query"
)

// Ingredients, steps and tags are stored as jsonb; scanning text[] through
// database/sql would need a driver-specific array type, jsonb keeps the
// repository portable across the pgx stdlib driver and test doubles.
const recipeColumns = `id, user_id, title, description, image_url, ingredients, steps, category, tags, prep_time, cook_time, servings, difficulty, is_public, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}

	ingredients, steps, tags, err := marshalLists(recipe)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO recipes (id, user_id, title, description, image_url, ingredients, steps, category, tags, prep_time, cook_time, servings, difficulty, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		recipe.ID, recipe.UserID, recipe.Title, recipe.Description, recipe.ImageURL,
		ingredients, steps, recipe.Category, tags,
		recipe.PrepTime, recipe.CookTime, recipe.Servings, recipe.Difficulty, recipe.IsPublic,
	).Scan(&recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return recipe, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = $1`

	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return recipe, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectRecipes(rows)
}

func (r *PostgresRepository) ListPublic(ctx context.Context, opts ListOptions) ([]*models.Recipe, error) {
	b := query.New().Eq("is_public", true)
	if opts.Category != "" {
		b.Eq("category", opts.Category)
	}
	b.ILike(opts.Search, "title", "description")
	b.OrderBy("created_at DESC").Paginate(opts.Limit, opts.Offset)

	tail, args := b.Build()
	q := `SELECT ` + recipeColumns + ` FROM recipes` + tail

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return collectRecipes(rows)
}

func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	ingredients, steps, tags, err := marshalLists(recipe)
	if err != nil {
		return nil, err
	}

	// The owner check is part of the statement so a non-owner update is
	// indistinguishable from a missing row.
	query :=
		`UPDATE recipes
		 SET title = $3, description = $4, image_url = $5, ingredients = $6, steps = $7, category = $8, tags = $9,
		     prep_time = $10, cook_time = $11, servings = $12, difficulty = $13, is_public = $14, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + recipeColumns

	updated, err := scanRecipe(r.db.QueryRowContext(ctx, query,
		recipe.ID, recipe.UserID, recipe.Title, recipe.Description, recipe.ImageURL,
		ingredients, steps, recipe.Category, tags,
		recipe.PrepTime, recipe.CookTime, recipe.Servings, recipe.Difficulty, recipe.IsPublic))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM recipes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	rec := &models.Recipe{}
	var ingredients, steps, tags []byte

	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Description, &rec.ImageURL,
		&ingredients, &steps, &rec.Category, &tags,
		&rec.PrepTime, &rec.CookTime, &rec.Servings, &rec.Difficulty, &rec.IsPublic,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := unmarshalList(ingredients, &rec.Ingredients); err != nil {
		return nil, err
	}
	if err := unmarshalList(steps, &rec.Steps); err != nil {
		return nil, err
	}
	if err := unmarshalList(tags, &rec.Tags); err != nil {
		return nil, err
	}
	return rec, nil
}

func collectRecipes(rows *sql.Rows) ([]*models.Recipe, error) {
	defer rows.Close()

	var result []*models.Recipe
	for rows.Next() {
		rec, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func marshalLists(recipe *models.Recipe) (ingredients, steps, tags []byte, err error) {
	if ingredients, err = json.Marshal(emptyIfNil(recipe.Ingredients)); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding ingredients: %w", err)
	}
	if steps, err = json.Marshal(emptyIfNil(recipe.Steps)); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding steps: %w", err)
	}
	if tags, err = json.Marshal(emptyIfNil(recipe.Tags)); err != nil {
		return nil, nil, nil, fmt.Errorf("encoding tags: %w", err)
	}
	return ingredients, steps, tags, nil
}

func unmarshalList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = nil
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding list column: %w", err)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

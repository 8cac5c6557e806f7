package bookmarks

import (
	"context"

	"github.com/recipebox/recipebox/internal/models"
)

type Repository interface {
	Add(ctx context.Context, userID, recipeID string) error
	Remove(ctx context.Context, userID, recipeID string) error
	Exists(ctx context.Context, userID, recipeID string) (bool, error)
	CountForRecipe(ctx context.Context, recipeID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error)
}

package recipes

import (
	"context"

	"github.com/recipebox/recipebox/internal/models"
)

// ListOptions narrow and page the public catalog listing.
type ListOptions struct {
	Category string // exact match when non-empty
	Search   string // case-insensitive substring over title and description
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	GetByID(ctx context.Context, id string) (*models.Recipe, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error)
	ListPublic(ctx context.Context, opts ListOptions) ([]*models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	Delete(ctx context.Context, id, userID string) error
}

package profiles

import (
	"context"

	"github.com/recipebox/recipebox/internal/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Insert(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

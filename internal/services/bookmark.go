package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/dbx"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repositories/bookmarks"
	"github.com/recipebox/recipebox/internal/repositories/recipes"
)

// BookmarkService holds the connection and a repository constructor rather
// than a ready repository: Toggle needs the exists+add/remove pair on one
// transaction, so it binds the repository to the handle per call.
type BookmarkService struct {
	db        *sql.DB
	bookmarks func(db dbx.DBTX) bookmarks.Repository
	recipes   recipes.Repository
}

func NewBookmarkService(conn *sql.DB, bookmarkRepo func(db dbx.DBTX) bookmarks.Repository, recipeRepo recipes.Repository) *BookmarkService {
	return &BookmarkService{db: conn, bookmarks: bookmarkRepo, recipes: recipeRepo}
}

// Toggle flips the bookmark for (userID, recipeID) and reports the new
// state. Only public recipes and the user's own can be saved. The check and
// the write run in one transaction so two racing toggles cannot interleave.
func (s *BookmarkService) Toggle(ctx context.Context, userID, recipeID string) (bool, error) {
	rec, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return false, err
	}
	if !rec.IsPublic && rec.UserID != userID {
		return false, common.ErrNotFound
	}

	var saved bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.bookmarks(tx)
		exists, err := repo.Exists(ctx, userID, recipeID)
		if err != nil {
			return err
		}
		if exists {
			saved = false
			if err := repo.Remove(ctx, userID, recipeID); err != nil && !errors.Is(err, common.ErrNotFound) {
				return err
			}
			return nil
		}
		saved = true
		return repo.Add(ctx, userID, recipeID)
	})
	if err != nil {
		return false, err
	}
	return saved, nil
}

// IsBookmarked reports whether the user saved the recipe.
func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, recipeID string) (bool, error) {
	return s.bookmarks(s.db).Exists(ctx, userID, recipeID)
}

// Count returns how many users saved the recipe.
func (s *BookmarkService) Count(ctx context.Context, recipeID string) (int64, error) {
	return s.bookmarks(s.db).CountForRecipe(ctx, recipeID)
}

// ListSaved returns the recipes the user bookmarked, newest first.
func (s *BookmarkService) ListSaved(ctx context.Context, userID string) ([]*models.Recipe, error) {
	return s.bookmarks(s.db).ListByUser(ctx, userID)
}

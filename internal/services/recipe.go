// Package services holds the application use-cases sitting between the CLI
// and the repositories.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/logging"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repositories/recipes"
	"github.com/recipebox/recipebox/internal/storage"
)

const (
	titleMinLen    = 3
	titleMaxLen    = 100
	maxMinutes     = 1440
	minServings    = 1
	maxServings    = 100
	defaultPerPage = 20
	maxPerPage     = 100
)

// RecipeInput is the raw form data for creating or updating a recipe.
// Ingredients and steps arrive as newline-separated text, tags as a
// comma-separated line, mirroring the publish form.
type RecipeInput struct {
	Title       string
	Description string
	Category    string
	Difficulty  string
	PrepTime    int
	CookTime    int
	Servings    int
	IsPublic    bool
	Ingredients string
	Steps       string
	Tags        string
	Image       []byte
}

type RecipeService struct {
	recipes recipes.Repository
	images  storage.ImageStore
	logger  logging.Logger
}

func NewRecipeService(repo recipes.Repository, images storage.ImageStore, logger logging.Logger) *RecipeService {
	return &RecipeService{
		recipes: repo,
		images:  images,
		logger:  logger.With("component", "recipes"),
	}
}

func (s *RecipeService) validate(in *RecipeInput) (*models.Recipe, error) {
	title := strings.TrimSpace(in.Title)
	if l := len(title); l < titleMinLen || l > titleMaxLen {
		return nil, fmt.Errorf("%w: title must be %d-%d characters", common.ErrValidation, titleMinLen, titleMaxLen)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", common.ErrValidation)
	}

	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyEasy
	}
	switch difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return nil, fmt.Errorf("%w: unknown difficulty %q", common.ErrValidation, difficulty)
	}

	if in.PrepTime < 0 || in.PrepTime > maxMinutes {
		return nil, fmt.Errorf("%w: prep time must be 0-%d minutes", common.ErrValidation, maxMinutes)
	}
	if in.CookTime < 0 || in.CookTime > maxMinutes {
		return nil, fmt.Errorf("%w: cook time must be 0-%d minutes", common.ErrValidation, maxMinutes)
	}
	if in.Servings < minServings || in.Servings > maxServings {
		return nil, fmt.Errorf("%w: servings must be %d-%d", common.ErrValidation, minServings, maxServings)
	}

	ingredients := splitLines(in.Ingredients)
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("%w: at least one ingredient is required", common.ErrValidation)
	}
	steps := splitLines(in.Steps)
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: at least one step is required", common.ErrValidation)
	}

	return &models.Recipe{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Difficulty:  difficulty,
		PrepTime:    in.PrepTime,
		CookTime:    in.CookTime,
		Servings:    in.Servings,
		IsPublic:    in.IsPublic,
		Ingredients: ingredients,
		Steps:       steps,
		Tags:        splitComma(in.Tags),
	}, nil
}

// Create validates the input, uploads the photo when one is attached and
// inserts the recipe. A failed insert removes the just-uploaded photo so the
// store does not accumulate orphans.
func (s *RecipeService) Create(ctx context.Context, userID string, in *RecipeInput) (*models.Recipe, error) {
	rec, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	rec.UserID = userID

	if len(in.Image) > 0 {
		url, err := s.images.UploadRecipeImage(ctx, userID, in.Image)
		if err != nil {
			return nil, err
		}
		rec.ImageURL = url
	}

	created, err := s.recipes.Create(ctx, rec)
	if err != nil {
		if rec.ImageURL != "" {
			if derr := s.images.Delete(ctx, rec.ImageURL); derr != nil {
				s.logger.Warn(ctx, "orphaned image cleanup failed", "url", rec.ImageURL, "error", derr)
			}
		}
		return nil, err
	}
	return created, nil
}

// Update replaces the recipe content. A newly attached photo is uploaded
// first; the previous one is removed only after the row update succeeds.
func (s *RecipeService) Update(ctx context.Context, userID, id string, in *RecipeInput) (*models.Recipe, error) {
	rec, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	rec.UserID = userID

	existing, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, common.ErrForbidden
	}
	rec.ImageURL = existing.ImageURL

	if len(in.Image) > 0 {
		url, err := s.images.UploadRecipeImage(ctx, userID, in.Image)
		if err != nil {
			return nil, err
		}
		rec.ImageURL = url
	}

	updated, err := s.recipes.Update(ctx, rec)
	if err != nil {
		if len(in.Image) > 0 && rec.ImageURL != "" {
			if derr := s.images.Delete(ctx, rec.ImageURL); derr != nil {
				s.logger.Warn(ctx, "orphaned image cleanup failed", "url", rec.ImageURL, "error", derr)
			}
		}
		return nil, err
	}

	if len(in.Image) > 0 && existing.ImageURL != "" && existing.ImageURL != updated.ImageURL {
		if derr := s.images.Delete(ctx, existing.ImageURL); derr != nil {
			s.logger.Warn(ctx, "replaced image cleanup failed", "url", existing.ImageURL, "error", derr)
		}
	}
	return updated, nil
}

// Delete removes the recipe and, best effort, its photo.
func (s *RecipeService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id, userID); err != nil {
		return err
	}
	if existing.ImageURL != "" {
		if derr := s.images.Delete(ctx, existing.ImageURL); derr != nil {
			s.logger.Warn(ctx, "image cleanup failed", "url", existing.ImageURL, "error", derr)
		}
	}
	return nil
}

// Get returns one recipe. Private recipes are only visible to their owner;
// viewerID may be empty for anonymous readers.
func (s *RecipeService) Get(ctx context.Context, viewerID, id string) (*models.Recipe, error) {
	rec, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.IsPublic && rec.UserID != viewerID {
		return nil, common.ErrNotFound
	}
	return rec, nil
}

// ListMine returns all of the user's recipes, drafts included.
func (s *RecipeService) ListMine(ctx context.Context, userID string) ([]*models.Recipe, error) {
	return s.recipes.ListByUser(ctx, userID)
}

// ListPublic pages through the public catalog. Page is 1-based.
func (s *RecipeService) ListPublic(ctx context.Context, category, search string, page, perPage int) ([]*models.Recipe, error) {
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page < 1 {
		page = 1
	}
	return s.recipes.ListPublic(ctx, recipes.ListOptions{
		Category: category,
		Search:   search,
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	})
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func splitComma(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/models"
)

func validInput() *RecipeInput {
	return &RecipeInput{
		Title:       "Sourdough Bread",
		Description: "Crusty loaf",
		Category:    "bread",
		Difficulty:  models.DifficultyMedium,
		PrepTime:    30,
		CookTime:    45,
		Servings:    4,
		IsPublic:    true,
		Ingredients: "flour\nwater\n\n  salt  \n",
		Steps:       "mix\nproof\nbake",
		Tags:        "bread, slow, vegan,",
	}
}

func newRecipeService() (*RecipeService, *fakeRecipeRepo, *fakeImageStore) {
	repo := newFakeRecipeRepo()
	images := &fakeImageStore{}
	return NewRecipeService(repo, images, testLogger()), repo, images
}

func TestCreate_ParsesTextLists(t *testing.T) {
	svc, _, _ := newRecipeService()

	got, err := svc.Create(context.Background(), "u-1", validInput())
	require.NoError(t, err)
	require.Equal(t, []string{"flour", "water", "salt"}, got.Ingredients)
	require.Equal(t, []string{"mix", "proof", "bake"}, got.Steps)
	require.Equal(t, []string{"bread", "slow", "vegan"}, got.Tags)
	require.NotEmpty(t, got.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newRecipeService()

	tests := []struct {
		name   string
		mutate func(*RecipeInput)
	}{
		{"short title", func(in *RecipeInput) { in.Title = "ab" }},
		{"missing category", func(in *RecipeInput) { in.Category = " " }},
		{"bad difficulty", func(in *RecipeInput) { in.Difficulty = "impossible" }},
		{"negative prep time", func(in *RecipeInput) { in.PrepTime = -1 }},
		{"cook time over a day", func(in *RecipeInput) { in.CookTime = 1441 }},
		{"zero servings", func(in *RecipeInput) { in.Servings = 0 }},
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = "\n  \n" }},
		{"no steps", func(in *RecipeInput) { in.Steps = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			_, err := svc.Create(context.Background(), "u-1", in)
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestCreate_DefaultDifficulty(t *testing.T) {
	svc, _, _ := newRecipeService()

	in := validInput()
	in.Difficulty = ""
	got, err := svc.Create(context.Background(), "u-1", in)
	require.NoError(t, err)
	require.Equal(t, models.DifficultyEasy, got.Difficulty)
}

func TestCreate_WithImage(t *testing.T) {
	svc, _, images := newRecipeService()

	in := validInput()
	in.Image = []byte("png bytes")
	got, err := svc.Create(context.Background(), "u-1", in)
	require.NoError(t, err)
	require.Len(t, images.uploads, 1)
	require.Equal(t, images.uploads[0], got.ImageURL)
}

func TestCreate_InsertFailureRemovesUploadedImage(t *testing.T) {
	repo := newFakeRecipeRepo()
	repo.failOp = "create"
	images := &fakeImageStore{}
	svc := NewRecipeService(repo, images, testLogger())

	in := validInput()
	in.Image = []byte("png bytes")
	_, err := svc.Create(context.Background(), "u-1", in)
	require.Error(t, err)
	require.Len(t, images.deletes, 1, "uploaded image must not be orphaned")
	require.Equal(t, images.uploads[0], images.deletes[0])
}

func TestUpdate_ReplacingImageRemovesOldOne(t *testing.T) {
	svc, _, images := newRecipeService()

	in := validInput()
	in.Image = []byte("v1")
	created, err := svc.Create(context.Background(), "u-1", in)
	require.NoError(t, err)
	oldURL := created.ImageURL

	in2 := validInput()
	in2.Image = []byte("v2")
	updated, err := svc.Update(context.Background(), "u-1", created.ID, in2)
	require.NoError(t, err)
	require.NotEqual(t, oldURL, updated.ImageURL)
	require.Contains(t, images.deletes, oldURL)
}

func TestUpdate_KeepsImageWhenNoneAttached(t *testing.T) {
	svc, _, _ := newRecipeService()

	in := validInput()
	in.Image = []byte("v1")
	created, err := svc.Create(context.Background(), "u-1", in)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "u-1", created.ID, validInput())
	require.NoError(t, err)
	require.Equal(t, created.ImageURL, updated.ImageURL)
}

func TestUpdate_NotOwner(t *testing.T) {
	svc, _, _ := newRecipeService()

	created, err := svc.Create(context.Background(), "u-1", validInput())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "intruder", created.ID, validInput())
	require.ErrorIs(t, err, common.ErrForbidden)
}

func TestDelete_RemovesImage(t *testing.T) {
	svc, repo, images := newRecipeService()

	in := validInput()
	in.Image = []byte("v1")
	created, err := svc.Create(context.Background(), "u-1", in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u-1", created.ID))
	require.Contains(t, images.deletes, created.ImageURL)

	_, err = repo.GetByID(context.Background(), created.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_PrivateRecipeHiddenFromOthers(t *testing.T) {
	svc, _, _ := newRecipeService()

	in := validInput()
	in.IsPublic = false
	created, err := svc.Create(context.Background(), "u-1", in)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "someone-else", created.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := svc.Get(context.Background(), "u-1", created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestListPublic_ClampsPaging(t *testing.T) {
	svc, repo, _ := newRecipeService()

	_, err := svc.ListPublic(context.Background(), "", "", 0, 0)
	require.NoError(t, err)
	require.Equal(t, 20, repo.lastOpt.Limit)
	require.Equal(t, 0, repo.lastOpt.Offset)

	_, err = svc.ListPublic(context.Background(), "bread", "sour", 3, 1000)
	require.NoError(t, err)
	require.Equal(t, 100, repo.lastOpt.Limit)
	require.Equal(t, 200, repo.lastOpt.Offset)
	require.Equal(t, "bread", repo.lastOpt.Category)
	require.Equal(t, "sour", repo.lastOpt.Search)
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/services"
)

// photoLinkTTL is how long a printed photo link stays valid.
const photoLinkTTL = 15 * time.Minute

// Browse lists the public catalog: `browse [category] [search terms...]`.
func (a *App) Browse(ctx context.Context, args []string) error {
	var category, search string
	if len(args) > 0 {
		category = args[0]
	}
	if len(args) > 1 {
		search = strings.Join(args[1:], " ")
	}

	list, err := a.recipes.ListPublic(ctx, category, search, 1, 0)
	if err != nil {
		printlnFn("Could not load recipes:", err.Error())
		return err
	}
	if len(list) == 0 {
		printlnFn("No recipes found.")
		return nil
	}
	for _, rec := range list {
		printRecipeLine(rec)
	}
	return nil
}

func (a *App) Mine(ctx context.Context) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}
	list, err := a.recipes.ListMine(ctx, userID)
	if err != nil {
		printlnFn("Could not load your recipes:", err.Error())
		return err
	}
	if len(list) == 0 {
		printlnFn("You have no recipes yet. Try 'add'.")
		return nil
	}
	for _, rec := range list {
		printRecipeLine(rec)
	}
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	rec, err := a.recipes.Get(ctx, a.currentUserID(), id)
	if err != nil {
		printlnFn("Could not load recipe:", err.Error())
		return err
	}

	printlnFn(rec.Title)
	if rec.Description != "" {
		printlnFn(rec.Description)
	}
	printlnFn(fmt.Sprintf("category: %s | difficulty: %s | prep: %dm | cook: %dm | serves: %d",
		rec.Category, rec.Difficulty, rec.PrepTime, rec.CookTime, rec.Servings))
	if len(rec.Tags) > 0 {
		printlnFn("tags:", strings.Join(rec.Tags, ", "))
	}
	printlnFn("Ingredients:")
	for _, ing := range rec.Ingredients {
		printlnFn("  -", ing)
	}
	printlnFn("Steps:")
	for i, step := range rec.Steps {
		printlnFn(fmt.Sprintf("  %d. %s", i+1, step))
	}

	if n, err := a.bookmarks.Count(ctx, rec.ID); err == nil && n > 0 {
		printlnFn(fmt.Sprintf("Saved by %d users", n))
	}
	if userID := a.currentUserID(); userID != "" {
		if ok, err := a.bookmarks.IsBookmarked(ctx, userID, rec.ID); err == nil && ok {
			printlnFn("You saved this recipe.")
		}
	}
	if rec.ImageURL != "" {
		if link, err := a.images.PresignGet(ctx, rec.ImageURL, photoLinkTTL); err == nil {
			printlnFn("photo:", link)
		}
	}
	return nil
}

func (a *App) AddRecipe(ctx context.Context) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}

	in := &services.RecipeInput{}
	var err error
	if in.Title, err = GetSimpleText(a.reader, "Title", os.Stdout); err != nil {
		return err
	}
	if in.Description, err = GetSimpleText(a.reader, "Description", os.Stdout); err != nil {
		return err
	}
	if in.Category, err = GetSimpleText(a.reader, "Category", os.Stdout); err != nil {
		return err
	}
	if in.Difficulty, err = GetSimpleText(a.reader, "Difficulty (easy/medium/hard, default easy)", os.Stdout); err != nil {
		return err
	}
	if in.PrepTime, err = GetInt(a.reader, "Prep time, minutes", 0, os.Stdout); err != nil {
		return err
	}
	if in.CookTime, err = GetInt(a.reader, "Cook time, minutes", 0, os.Stdout); err != nil {
		return err
	}
	if in.Servings, err = GetInt(a.reader, "Servings", 1, os.Stdout); err != nil {
		return err
	}
	if in.Ingredients, err = GetMultiline(a.reader, "Ingredients, one per line", os.Stdout); err != nil {
		return err
	}
	if in.Steps, err = GetMultiline(a.reader, "Steps, one per line", os.Stdout); err != nil {
		return err
	}
	if in.Tags, err = GetSimpleText(a.reader, "Tags, comma separated", os.Stdout); err != nil {
		return err
	}
	if in.IsPublic, err = GetBool(a.reader, "Publish to the catalog?", false, os.Stdout); err != nil {
		return err
	}

	imagePath, err := GetSimpleText(a.reader, "Photo path (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			printlnFn("Could not read photo:", err.Error())
			return err
		}
		in.Image = data
	}

	rec, err := a.recipes.Create(ctx, userID, in)
	if err != nil {
		printlnFn("Could not create recipe:", err.Error())
		return err
	}
	printlnFn("Created", rec.ID)
	return nil
}

// EditRecipe re-prompts every field of one of the user's recipes, with the
// stored values as defaults, and saves the result. An empty photo path keeps
// the current photo.
func (a *App) EditRecipe(ctx context.Context, id string) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}

	existing, err := a.recipes.Get(ctx, userID, id)
	if err != nil {
		printlnFn("Could not load recipe:", err.Error())
		return err
	}
	if existing.UserID != userID {
		printlnFn("No such recipe (or it is not yours).")
		return common.ErrForbidden
	}

	printlnFn("Editing", existing.ID, "- press Enter to keep the current value.")

	in := &services.RecipeInput{
		Ingredients: strings.Join(existing.Ingredients, "\n"),
		Steps:       strings.Join(existing.Steps, "\n"),
	}
	if in.Title, err = editText(a.reader, "Title", existing.Title); err != nil {
		return err
	}
	if in.Description, err = editText(a.reader, "Description", existing.Description); err != nil {
		return err
	}
	if in.Category, err = editText(a.reader, "Category", existing.Category); err != nil {
		return err
	}
	if in.Difficulty, err = editText(a.reader, "Difficulty (easy/medium/hard)", existing.Difficulty); err != nil {
		return err
	}
	if in.PrepTime, err = GetInt(a.reader, fmt.Sprintf("Prep time, minutes [%d]", existing.PrepTime), existing.PrepTime, os.Stdout); err != nil {
		return err
	}
	if in.CookTime, err = GetInt(a.reader, fmt.Sprintf("Cook time, minutes [%d]", existing.CookTime), existing.CookTime, os.Stdout); err != nil {
		return err
	}
	if in.Servings, err = GetInt(a.reader, fmt.Sprintf("Servings [%d]", existing.Servings), existing.Servings, os.Stdout); err != nil {
		return err
	}
	ingredients, err := GetMultiline(a.reader, "Ingredients, one per line (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if ingredients != "" {
		in.Ingredients = ingredients
	}
	steps, err := GetMultiline(a.reader, "Steps, one per line (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if steps != "" {
		in.Steps = steps
	}
	if in.Tags, err = editText(a.reader, "Tags, comma separated", strings.Join(existing.Tags, ", ")); err != nil {
		return err
	}
	if in.IsPublic, err = GetBool(a.reader, "Publish to the catalog?", existing.IsPublic, os.Stdout); err != nil {
		return err
	}

	imagePath, err := GetSimpleText(a.reader, "New photo path (empty keeps current)", os.Stdout)
	if err != nil {
		return err
	}
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			printlnFn("Could not read photo:", err.Error())
			return err
		}
		in.Image = data
	}

	rec, err := a.recipes.Update(ctx, userID, id, in)
	if err != nil {
		printlnFn("Could not update recipe:", err.Error())
		return err
	}
	printlnFn("Updated", rec.ID)
	return nil
}

// editText prompts with the current value in brackets; an empty line keeps it.
func editText(reader *bufio.Reader, prompt, current string) (string, error) {
	text, err := GetSimpleText(reader, fmt.Sprintf("%s [%s]", prompt, current), os.Stdout)
	if err != nil {
		return "", err
	}
	if text == "" {
		return current, nil
	}
	return text, nil
}

func (a *App) DeleteRecipe(ctx context.Context, id string) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}
	if err := a.recipes.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No such recipe (or it is not yours).")
		} else {
			printlnFn("Could not delete recipe:", err.Error())
		}
		return err
	}
	printlnFn("Deleted.")
	return nil
}

func printRecipeLine(rec *models.Recipe) {
	visibility := "public"
	if !rec.IsPublic {
		visibility = "draft"
	}
	printlnFn(fmt.Sprintf("%s  %-30s  %s/%s  %s", rec.ID, rec.Title, rec.Category, rec.Difficulty, visibility))
}

package models

import "time"

// Difficulty levels accepted for a recipe.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Recipe is a single published (or draft) recipe owned by a user.
type Recipe struct {
	ID          string
	UserID      string
	Title       string
	Description string
	ImageURL    string
	Ingredients []string
	Steps       []string
	Category    string
	Tags        []string
	PrepTime    int
	CookTime    int
	Servings    int
	Difficulty  string
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Bookmark marks a recipe as saved by a user. The (UserID, RecipeID) pair
// is unique.
type Bookmark struct {
	ID        string
	UserID    string
	RecipeID  string
	CreatedAt time.Time
}

package cli

import (
	"context"

	"github.com/recipebox/recipebox/internal/common"
)

func (a *App) ToggleSave(ctx context.Context, id string) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}
	saved, err := a.bookmarks.Toggle(ctx, userID, id)
	if err != nil {
		printlnFn("Could not update bookmark:", err.Error())
		return err
	}
	if saved {
		printlnFn("Saved.")
	} else {
		printlnFn("Removed from saved.")
	}
	return nil
}

func (a *App) Saved(ctx context.Context) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}
	list, err := a.bookmarks.ListSaved(ctx, userID)
	if err != nil {
		printlnFn("Could not load saved recipes:", err.Error())
		return err
	}
	if len(list) == 0 {
		printlnFn("Nothing saved yet.")
		return nil
	}
	for _, rec := range list {
		printRecipeLine(rec)
	}
	return nil
}

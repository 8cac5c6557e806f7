package cli

import (
	"context"
	"os"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/services"
)

func (a *App) ShowProfile(ctx context.Context) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}
	p, err := a.profiles.Get(ctx, userID)
	if err != nil {
		printlnFn("Could not load profile:", err.Error())
		return err
	}
	printlnFn("username:", p.Username)
	printlnFn("name:    ", p.FullName)
	if p.Bio != "" {
		printlnFn("bio:     ", p.Bio)
	}
	if p.Website != "" {
		printlnFn("website: ", p.Website)
	}
	if p.Location != "" {
		printlnFn("location:", p.Location)
	}
	if p.AvatarURL != "" {
		printlnFn("avatar:  ", p.AvatarURL)
	}
	return nil
}

func (a *App) EditProfile(ctx context.Context) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}

	in := &services.ProfileInput{}
	var err error
	if in.Username, err = GetSimpleText(a.reader, "Username", os.Stdout); err != nil {
		return err
	}
	if in.FullName, err = GetSimpleText(a.reader, "Full name", os.Stdout); err != nil {
		return err
	}
	if in.Bio, err = GetSimpleText(a.reader, "Bio", os.Stdout); err != nil {
		return err
	}
	if in.Website, err = GetSimpleText(a.reader, "Website", os.Stdout); err != nil {
		return err
	}
	if in.Location, err = GetSimpleText(a.reader, "Location", os.Stdout); err != nil {
		return err
	}

	if _, err := a.profiles.Update(ctx, userID, in); err != nil {
		printlnFn("Could not update profile:", err.Error())
		return err
	}

	// The auth snapshot still holds the old profile; pull the fresh one.
	a.auth.Refresh(ctx)
	printlnFn("Profile updated.")
	return nil
}

func (a *App) SetAvatar(ctx context.Context, path string) error {
	userID := a.currentUserID()
	if userID == "" {
		printlnFn("Sign in first.")
		return common.ErrNoSession
	}
	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn("Could not read image:", err.Error())
		return err
	}
	if _, err := a.profiles.UpdateAvatar(ctx, userID, data); err != nil {
		printlnFn("Could not update avatar:", err.Error())
		return err
	}
	a.auth.Refresh(ctx)
	printlnFn("Avatar updated.")
	return nil
}

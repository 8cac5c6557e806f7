package cli

import (
	"context"
	"os"

	"github.com/recipebox/recipebox/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "E-mail", os.Stdout)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	fullName, err := GetSimpleText(a.reader, "Full name", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.SignUp(ctx, email, string(password), username, fullName); err != nil {
		printlnFn("Registration failed:", err.Error())
		return err
	}

	if a.isLoggedIn() {
		printlnFn("Welcome,", a.status() + "!")
	} else {
		printlnFn("Almost there — confirm the link we sent to", email)
	}
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "E-mail", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.SignIn(ctx, email, string(password)); err != nil {
		printlnFn("Login failed:", err.Error())
		return err
	}
	printlnFn("Welcome back,", a.status() + "!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		// The local session is gone either way.
		printlnFn("Signed out locally; the server could not be reached:", err.Error())
		return nil
	}
	printlnFn("Signed out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	st := a.auth.State()
	switch {
	case st.Loading:
		printlnFn("Still checking the session...")
	case st.User == nil:
		printlnFn("Not signed in.")
	default:
		printlnFn("Signed in as", st.User.Profile.Username, "<"+st.User.Email+">")
	}
	return nil
}

func (a *App) RefreshSession(ctx context.Context) error {
	a.auth.Refresh(ctx)
	printlnFn("Session refreshed.")
	return nil
}

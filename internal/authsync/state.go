package authsync

import (
	"strings"

	"github.com/recipebox/recipebox/internal/authapi"
	"github.com/recipebox/recipebox/internal/models"
)

// AuthUser is the view model consumers read: identity claims from the auth
// service combined with the application profile (real or placeholder). Each
// reconciliation constructs a fresh value; an installed snapshot is never
// mutated in place.
type AuthUser struct {
	ID       string
	Email    string
	Metadata map[string]any
	Profile  models.Profile
}

// State is the reactive cell exposed to consumers.
//
// Loading is true only while a reconciliation is in flight or before the
// first one has completed. User == nil with Loading == false means
// "determined: not authenticated"; collapsing the two causes redirect
// flashes in the UI.
type State struct {
	User    *AuthUser
	Loading bool
}

// sameUser reports whether two snapshots describe the same user with the
// same profile content, so an unchanged reconciliation can keep the existing
// snapshot (pointer identity stays stable, consumers see no spurious update).
func sameUser(a, b *AuthUser) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Email == b.Email && a.Profile.Equal(&b.Profile)
}

// placeholderProfile synthesizes a profile from identity-claim metadata for
// when the real record is unavailable or slow: username falls back to the
// local part of the e-mail address, full name to the whole address.
func placeholderProfile(identity *authapi.Identity) *models.Profile {
	username := identity.MetadataString("username")
	if username == "" {
		username = identity.Email
		if at := strings.Index(username, "@"); at > 0 {
			username = username[:at]
		}
	}
	fullName := identity.MetadataString("full_name")
	if fullName == "" {
		fullName = identity.Email
	}
	return &models.Profile{
		ID:        identity.ID,
		Username:  username,
		FullName:  fullName,
		AvatarURL: identity.MetadataString("avatar_url"),
	}
}

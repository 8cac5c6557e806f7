// Package models defines the application-level data types shared by
// repositories, services, and the session synchronizer.
package models

import "time"

// Profile is the application-level user record, distinct from the identity
// record held by the auth backend. It is keyed by the auth user id and
// created at sign-up; username is assigned once and thereafter stable
// unless explicitly edited.
type Profile struct {
	ID        string
	Username  string
	FullName  string
	AvatarURL string
	Bio       string
	Website   string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Equal reports whether two profiles carry the same content. Timestamps are
// ignored so that a re-fetch returning identical fields does not look like
// an external edit.
func (p *Profile) Equal(other *Profile) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID &&
		p.Username == other.Username &&
		p.FullName == other.FullName &&
		p.AvatarURL == other.AvatarURL &&
		p.Bio == other.Bio &&
		p.Website == other.Website &&
		p.Location == other.Location
}

// Merge returns a copy of p with every empty field filled in from fallback.
// Fetched values win; fallback only supplies what the fetch left blank.
func (p *Profile) Merge(fallback *Profile) *Profile {
	if p == nil {
		return fallback
	}
	out := *p
	if fallback == nil {
		return &out
	}
	if out.ID == "" {
		out.ID = fallback.ID
	}
	if out.Username == "" {
		out.Username = fallback.Username
	}
	if out.FullName == "" {
		out.FullName = fallback.FullName
	}
	if out.AvatarURL == "" {
		out.AvatarURL = fallback.AvatarURL
	}
	if out.Bio == "" {
		out.Bio = fallback.Bio
	}
	if out.Website == "" {
		out.Website = fallback.Website
	}
	if out.Location == "" {
		out.Location = fallback.Location
	}
	return &out
}

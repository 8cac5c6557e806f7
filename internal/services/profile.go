package services

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/logging"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repositories/profiles"
	"github.com/recipebox/recipebox/internal/storage"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Username string
	FullName string
	Bio      string
	Website  string
	Location string
}

type ProfileService struct {
	profiles profiles.Repository
	images   storage.ImageStore
	logger   logging.Logger
}

func NewProfileService(repo profiles.Repository, images storage.ImageStore, logger logging.Logger) *ProfileService {
	return &ProfileService{
		profiles: repo,
		images:   images,
		logger:   logger.With("component", "profiles"),
	}
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return s.profiles.GetByUsername(ctx, username)
}

// Update validates and persists the editable fields, leaving the avatar as
// it was.
func (s *ProfileService) Update(ctx context.Context, userID string, in *ProfileInput) (*models.Profile, error) {
	username := strings.TrimSpace(in.Username)
	if !usernameRe.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-30 letters, digits or underscores", common.ErrValidation)
	}
	website := strings.TrimSpace(in.Website)
	if website != "" {
		u, err := url.Parse(website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("%w: website must be an http(s) url", common.ErrValidation)
		}
	}

	existing, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing.Username = username
	existing.FullName = strings.TrimSpace(in.FullName)
	existing.Bio = strings.TrimSpace(in.Bio)
	existing.Website = website
	existing.Location = strings.TrimSpace(in.Location)

	return s.profiles.Update(ctx, existing)
}

// UpdateAvatar uploads the new picture, points the profile at it and then,
// best effort, removes the previous one.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, image []byte) (*models.Profile, error) {
	existing, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	newURL, err := s.images.UploadAvatar(ctx, userID, image)
	if err != nil {
		return nil, err
	}

	oldURL := existing.AvatarURL
	existing.AvatarURL = newURL
	updated, err := s.profiles.Update(ctx, existing)
	if err != nil {
		if derr := s.images.Delete(ctx, newURL); derr != nil {
			s.logger.Warn(ctx, "orphaned avatar cleanup failed", "url", newURL, "error", derr)
		}
		return nil, err
	}

	if oldURL != "" && oldURL != newURL {
		if derr := s.images.Delete(ctx, oldURL); derr != nil {
			s.logger.Warn(ctx, "old avatar cleanup failed", "url", oldURL, "error", derr)
		}
	}
	return updated, nil
}

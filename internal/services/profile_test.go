package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/models"
)

func newProfileFixture() (*ProfileService, *fakeProfileRepo, *fakeImageStore) {
	repo := newFakeProfileRepo()
	repo.byID["u-1"] = &models.Profile{ID: "u-1", Username: "alice", FullName: "Alice A."}
	images := &fakeImageStore{}
	return NewProfileService(repo, images, testLogger()), repo, images
}

func TestProfileUpdate(t *testing.T) {
	svc, repo, _ := newProfileFixture()

	got, err := svc.Update(context.Background(), "u-1", &ProfileInput{
		Username: "alice_cooks",
		FullName: " Alice A. ",
		Bio:      "I bake",
		Website:  "https://alice.example.com",
		Location: "Riga",
	})
	require.NoError(t, err)
	require.Equal(t, "alice_cooks", got.Username)
	require.Equal(t, "Alice A.", got.FullName)

	stored, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "I bake", stored.Bio)
}

func TestProfileUpdate_Validation(t *testing.T) {
	svc, _, _ := newProfileFixture()

	tests := []struct {
		name  string
		input ProfileInput
	}{
		{"short username", ProfileInput{Username: "ab"}},
		{"bad characters", ProfileInput{Username: "alice cooks!"}},
		{"website not a url", ProfileInput{Username: "alice", Website: "not a url"}},
		{"website wrong scheme", ProfileInput{Username: "alice", Website: "ftp://alice.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), "u-1", &tt.input)
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestUpdateAvatar_ReplacesAndCleansUp(t *testing.T) {
	svc, repo, images := newProfileFixture()
	repo.byID["u-1"].AvatarURL = "https://img.example.com/avatars/u-1-old.png"

	got, err := svc.UpdateAvatar(context.Background(), "u-1", []byte("png"))
	require.NoError(t, err)
	require.NotEmpty(t, got.AvatarURL)
	require.NotEqual(t, "https://img.example.com/avatars/u-1-old.png", got.AvatarURL)
	require.Contains(t, images.deletes, "https://img.example.com/avatars/u-1-old.png")
}

func TestUpdateAvatar_DBFailureRemovesNewUpload(t *testing.T) {
	svc, repo, images := newProfileFixture()
	repo.updateErr = errors.New("db down")

	_, err := svc.UpdateAvatar(context.Background(), "u-1", []byte("png"))
	require.Error(t, err)
	require.Len(t, images.uploads, 1)
	require.Equal(t, images.uploads[0], images.deletes[0], "new avatar must not be orphaned")
}

func TestUpdateAvatar_OldCleanupFailureIsSwallowed(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.byID["u-1"] = &models.Profile{ID: "u-1", Username: "alice", AvatarURL: "https://img.example.com/avatars/u-1-old.png"}
	images := &fakeImageStore{deleteErr: errors.New("store down")}
	svc := NewProfileService(repo, images, testLogger())

	got, err := svc.UpdateAvatar(context.Background(), "u-1", []byte("png"))
	require.NoError(t, err, "cleanup is best effort")
	require.NotEmpty(t, got.AvatarURL)
}

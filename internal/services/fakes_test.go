package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/recipebox/recipebox/internal/common"
	"github.com/recipebox/recipebox/internal/logging"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repositories/recipes"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeRecipeRepo struct {
	mu      sync.Mutex
	byID    map[string]*models.Recipe
	nextID  int
	failOp  string // "create", "update", "delete" fails when set
	lastOpt recipes.ListOptions
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{byID: map[string]*models.Recipe{}}
}

func (f *fakeRecipeRepo) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOp == "create" {
		return nil, fmt.Errorf("db error: create failed")
	}
	f.nextID++
	r.ID = fmt.Sprintf("r-%d", f.nextID)
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	copied := *r
	f.byID[r.ID] = &copied
	return r, nil
}

func (f *fakeRecipeRepo) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRecipeRepo) ListByUser(ctx context.Context, userID string) ([]*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Recipe
	for _, r := range f.byID {
		if r.UserID == userID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) ListPublic(ctx context.Context, opts recipes.ListOptions) ([]*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpt = opts
	var out []*models.Recipe
	for _, r := range f.byID {
		if r.IsPublic {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) Update(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOp == "update" {
		return nil, fmt.Errorf("db error: update failed")
	}
	existing, ok := f.byID[r.ID]
	if !ok || existing.UserID != r.UserID {
		return nil, common.ErrNotFound
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now()
	copied := *r
	f.byID[r.ID] = &copied
	return r, nil
}

func (f *fakeRecipeRepo) Delete(ctx context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOp == "delete" {
		return fmt.Errorf("db error: delete failed")
	}
	existing, ok := f.byID[id]
	if !ok || existing.UserID != userID {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeProfileRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Profile
	updateErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byID: map[string]*models.Profile{}}
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfileRepo) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Username == username {
			copied := *p
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProfileRepo) Insert(ctx context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	f.byID[p.ID] = &copied
	return nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if _, ok := f.byID[p.ID]; !ok {
		return nil, common.ErrNotFound
	}
	copied := *p
	copied.UpdatedAt = time.Now()
	f.byID[p.ID] = &copied
	out := copied
	return &out, nil
}

type fakeImageStore struct {
	mu        sync.Mutex
	nextN     int
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeImageStore) upload(kind, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.nextN++
	url := fmt.Sprintf("https://img.example.com/%s/%s-%d.png", kind, userID, f.nextN)
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeImageStore) UploadAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	return f.upload("avatars", userID)
}

func (f *fakeImageStore) UploadRecipeImage(ctx context.Context, userID string, data []byte) (string, error) {
	return f.upload("recipe-images", userID)
}

func (f *fakeImageStore) Delete(ctx context.Context, publicURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, publicURL)
	return nil
}

func (f *fakeImageStore) PresignGet(ctx context.Context, publicURL string, expires time.Duration) (string, error) {
	return publicURL + "?signed", nil
}

// Package cli is the interactive terminal client: a small REPL over the
// auth synchronizer and the recipe, bookmark and profile services.
package cli

import (
	"bufio"
	"context"
	"os"
	"sync"
	"time"

	"github.com/recipebox/recipebox/internal/authsync"
	"github.com/recipebox/recipebox/internal/logging"
	"github.com/recipebox/recipebox/internal/services"
	"github.com/recipebox/recipebox/internal/storage"
)

// idleGap is how long the terminal must sit untouched before the next
// keystroke counts as "coming back", which triggers a session re-check.
const idleGap = 30 * time.Second

type App struct {
	auth      *authsync.Synchronizer
	recipes   *services.RecipeService
	bookmarks *services.BookmarkService
	profiles  *services.ProfileService
	images    storage.ImageStore
	logger    logging.Logger

	reader *bufio.Reader

	mu       sync.Mutex
	lastSeen time.Time
}

func NewApp(
	auth *authsync.Synchronizer,
	recipes *services.RecipeService,
	bookmarks *services.BookmarkService,
	profiles *services.ProfileService,
	images storage.ImageStore,
	logger logging.Logger,
) *App {
	return &App{
		auth:      auth,
		recipes:   recipes,
		bookmarks: bookmarks,
		profiles:  profiles,
		images:    images,
		logger:    logger.With("component", "cli"),
		reader:    bufio.NewReader(os.Stdin),
		lastSeen:  time.Now(),
	}
}

func (a *App) Run(ctx context.Context) {
	printlnFn("RecipeBox CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().User != nil
}

func (a *App) status() string {
	st := a.auth.State()
	switch {
	case st.Loading:
		return "..."
	case st.User != nil:
		return st.User.Profile.Username
	default:
		return "guest"
	}
}

func (a *App) currentUserID() string {
	if u := a.auth.State().User; u != nil {
		return u.ID
	}
	return ""
}

// markActivity records a keystroke; after a long idle gap it asks the
// synchronizer to re-check the session, the way a page does when its tab
// becomes visible again.
func (a *App) markActivity() {
	a.mu.Lock()
	idle := time.Since(a.lastSeen)
	a.lastSeen = time.Now()
	a.mu.Unlock()

	if idle > idleGap {
		a.auth.NotifyVisible()
	}
}

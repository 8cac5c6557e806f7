package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/recipebox/recipebox/internal/authapi"
	"github.com/recipebox/recipebox/internal/authsync"
	"github.com/recipebox/recipebox/internal/buildinfo"
	"github.com/recipebox/recipebox/internal/cli"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/db"
	"github.com/recipebox/recipebox/internal/logging"
	"github.com/recipebox/recipebox/internal/services"
	"github.com/recipebox/recipebox/internal/storage"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	manager, err := db.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	defer manager.Close()

	images, err := storage.NewS3ImageStore(ctx, storage.Config{
		AccessKey:         cfg.S3AccessKey,
		SecretKey:         cfg.S3SecretKey,
		Region:            cfg.S3Region,
		BaseEndpoint:      cfg.S3BaseEndpoint,
		AvatarBucket:      cfg.AvatarBucket,
		RecipeImageBucket: cfg.RecipeImageBucket,
	}, logger)
	if err != nil {
		log.Fatalf("image store init: %v", err)
	}

	backend, err := authapi.NewHTTPClient(cfg.AuthBaseURL, cfg.AuthAPIKey, cfg.SessionFile, logger)
	if err != nil {
		log.Fatalf("auth client init: %v", err)
	}
	defer backend.Close()

	conn := manager.Conn()
	profileRepo := manager.Profiles(conn)
	recipeRepo := manager.Recipes(conn)

	auth := authsync.New(backend, profileRepo, logger, authsync.Options{
		BootstrapTimeout:    cfg.BootstrapTimeout,
		ProfileFetchTimeout: cfg.ProfileFetchTimeout,
		ReconcileInterval:   cfg.ReconcileInterval,
		VisibilityDebounce:  cfg.VisibilityDebounce,
		SiteBaseURL:         cfg.SiteBaseURL,
	})
	auth.Start()
	defer auth.Close()

	recipeSvc := services.NewRecipeService(recipeRepo, images, logger)
	bookmarkSvc := services.NewBookmarkService(conn, manager.Bookmarks, recipeRepo)
	profileSvc := services.NewProfileService(profileRepo, images, logger)

	app := cli.NewApp(auth, recipeSvc, bookmarkSvc, profileSvc, images, logger)
	app.Run(ctx)
}

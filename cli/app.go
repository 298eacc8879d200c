package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/photosync/albumsync"
	"github.com/camden-git/photosync/auth"
	"github.com/camden-git/photosync/checks"
	"github.com/camden-git/photosync/config"
	"github.com/camden-git/photosync/database"
	"github.com/camden-git/photosync/models"
	"github.com/camden-git/photosync/photosapi"
	"github.com/camden-git/photosync/repository"
)

// app bundles everything a command needs: the open database, the
// repositories over it, the filesystem checker and the path namer.
type app struct {
	db         *gorm.DB
	albums     *repository.AlbumRepository
	media      *repository.MediaRepository
	albumFiles *repository.AlbumFileRepository
	runs       *repository.RunRepository
	check      *checks.Checker
	namer      *albumsync.Namer
}

// newApp prepares the root folder, opens the index database and builds the
// shared collaborators.
func newApp(cfg *config.Settings) (*app, error) {
	for _, p := range []string{cfg.RootFolder, cfg.DBPath} {
		if err := os.MkdirAll(p, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabaseFile())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		return nil, err
	}

	check := checks.New(cfg.RootFolder, cfg.MaxFilename, cfg.NtfsOverride)
	if !check.IsSymlink && !cfg.UseHardlinks {
		log.Printf("warning: filesystem does not support symlinks; use --use-hardlinks")
	}
	if !check.IsCaseSensitive {
		cfg.CaseInsensitiveFs = true
	}

	return &app{
		db:         db,
		albums:     repository.NewAlbumRepository(db),
		media:      repository.NewMediaRepository(db),
		albumFiles: repository.NewAlbumFileRepository(db),
		runs:       repository.NewRunRepository(db),
		check:      check,
		namer:      albumsync.NewNamer(cfg, check),
	}, nil
}

// newAPIClient builds the photos API client over the token file.
func (a *app) newAPIClient(cfg *config.Settings) *photosapi.Client {
	tokens := auth.NewFileTokenSource(cfg.TokenFile(), cfg.ClientID, cfg.ClientSecret)
	return photosapi.New(tokens, cfg.APIBase)
}

// beginRun opens a bookkeeping row for this invocation. The returned finish
// function stamps the row with the final counters and error.
func (a *app) beginRun() (*models.SyncRun, func(error)) {
	run := &models.SyncRun{ID: uuid.NewString()}
	if err := a.runs.Create(run); err != nil {
		log.Printf("warning: failed to record sync run: %v", err)
	}
	return run, func(runErr error) {
		if err := a.runs.Finish(run, runErr); err != nil {
			log.Printf("warning: failed to finish sync run: %v", err)
		}
	}
}

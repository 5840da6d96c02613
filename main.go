package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/movilworks/portfolio-backend/api"
	"github.com/movilworks/portfolio-backend/blobstore"
	"github.com/movilworks/portfolio-backend/config"
	"github.com/movilworks/portfolio-backend/media"
	"github.com/movilworks/portfolio-backend/storage"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	settings := config.NewSettings(config.New())

	store, blob, err := buildStore(settings)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	extractor := media.NewThumbnailExtractor(settings.UploadDir, "/uploads")
	var remote media.RemoteStore
	var assets api.AssetRemover
	if blob != nil {
		remote = blob
		assets = blob
	}
	processor := media.NewAssetProcessor(remote, extractor, settings.UploadDir, settings.TempUploadDir)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(api.Deps{
		Store:     store,
		Processor: processor,
		Assets:    assets,
		Settings:  settings,
	})
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// buildStore assembles the document backends for the configured storage
// mode. In blob mode the local projects file remains wired as a read-only
// fallback for empty remote documents.
func buildStore(settings config.Settings) (storage.Store, *blobstore.Client, error) {
	if settings.StorageMode == config.StorageBlob && settings.BlobEnabled() {
		client, err := blobstore.New(context.Background(), settings)
		if err != nil {
			return storage.Store{}, nil, err
		}

		projectRepo := storage.NewProjectRepo(
			storage.NewBlobBackend(client, settings.ProjectsDocumentKey()),
			storage.WithProjectFallback(storage.NewFileBackend(settings.DataFilePath)),
		)
		settingsRepo := storage.NewSettingsRepo(
			storage.NewBlobBackend(client, settings.HeroSettingsDocumentKey()),
		)
		log.Info().Str("bucket", settings.BlobBucket).Msg("using blob storage backend")
		return storage.New(projectRepo, settingsRepo), client, nil
	}

	if dir := filepath.Dir(settings.DataFilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return storage.Store{}, nil, err
		}
	}

	projectRepo := storage.NewProjectRepo(storage.NewFileBackend(settings.DataFilePath))
	settingsRepo := storage.NewSettingsRepo(storage.NewFileBackend(settings.HeroSettingsPath))
	log.Info().Str("path", settings.DataFilePath).Msg("using file storage backend")
	return storage.New(projectRepo, settingsRepo), nil, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

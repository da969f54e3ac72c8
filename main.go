package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"vodsync/config"
	"vodsync/handlers"
	"vodsync/services/enrich"
	"vodsync/services/playlist"
	"vodsync/services/scheduler"
	"vodsync/services/store"
	"vodsync/services/syncer"
	"vodsync/utils"
)

func main() {
	configPath := os.Getenv("VODSYNC_CONFIG")
	if configPath == "" {
		configPath = "settings.json"
	}

	settings, err := config.NewManager(configPath).Load()
	if err != nil {
		log.Fatalf("[main] failed to load settings: %v", err)
	}

	if settings.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    20, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		}))
	}

	if settings.PlaylistURL == "" {
		log.Fatal("[main] no playlist URL configured (set playlistUrl or VODSYNC_PLAYLIST_URL)")
	}

	fs := afero.NewOsFs()
	catalogStore := store.New(fs, settings.DataDir)
	fetcher := playlist.NewFetcher(settings.PlaylistURL, 0)

	var enricher syncer.MetadataEnricher
	if settings.TMDBAPIKey != "" {
		tmdb := enrich.NewTMDBClient(settings.TMDBAPIKey, settings.Language)
		enricher = enrich.New(tmdb.Lookup, enrich.Options{
			BatchSize:     settings.Enrichment.BatchSize,
			Concurrency:   settings.Enrichment.Concurrency,
			BatchDelay:    time.Duration(settings.Enrichment.BatchDelaySeconds) * time.Second,
			LookupTimeout: time.Duration(settings.Enrichment.LookupTimeoutSeconds) * time.Second,
		})
	} else {
		log.Println("[main] no TMDB API key configured, metadata enrichment disabled")
	}

	syncService := syncer.New(catalogStore, fetcher, enricher).
		WithFailureReport(fs, settings.ReportPath)

	sched := scheduler.NewService(syncService, time.Duration(settings.SyncIntervalMinutes)*time.Minute)
	if err := sched.Start(context.Background()); err != nil {
		log.Fatalf("[main] failed to start scheduler: %v", err)
	}

	syncHandler := handlers.NewSyncHandler(syncService, catalogStore)
	router := utils.NewRouter()
	router.HandleFunc("/api/status", syncHandler.GetStatus).Methods(http.MethodGet)
	router.HandleFunc("/api/sync", syncHandler.TriggerSync).Methods(http.MethodPost)
	router.HandleFunc("/api/categories", syncHandler.GetCategories).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    settings.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[main] listening on %s", settings.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Printf("[main] scheduler stop: %v", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] server shutdown: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/arkiform/go-plan-backend/config"
	"github.com/arkiform/go-plan-backend/internal/auth"
	"github.com/arkiform/go-plan-backend/internal/bootstrap"
	"github.com/arkiform/go-plan-backend/internal/db"
	"github.com/arkiform/go-plan-backend/internal/editor/autosave"
	"github.com/arkiform/go-plan-backend/internal/storage/postgres"
)

const serviceName = "go-plan-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, postgres.DSN(&cfg.Database))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	versionDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("open version database: %v", err)
	}
	defer versionDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("open redis: %v", err)
	}
	defer rdb.Close()

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("init firebase: %v", err)
	}

	router, sessions := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  serviceName,
		Version:      cfg.App.Version,
		InferenceURL: cfg.Inference.BaseURL,
		CreditsURL:   cfg.Credits.BaseURL,
		DB:           database.Pool,
		VersionDB:    versionDB,
		Redis:        rdb,
		AuthClient:   authClient,
	})

	scheduler, err := autosave.NewScheduler(cfg.Autosave.Interval, sessions)
	if err != nil {
		log.Fatalf("start autosave scheduler: %v", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("%s listening on :%s", serviceName, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	// Flush any unsaved work before the process exits.
	sessions.SweepAutosave(shutdownCtx)
}

package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/arkiform/go-plan-backend/config"
	"github.com/arkiform/go-plan-backend/internal/editor/repository"
	"github.com/arkiform/go-plan-backend/internal/storage/postgres"
)

// RunPruneVersions trims each project's version history to the newest N
// entries. Run from cron, not the API process.
func RunPruneVersions(args []string) {
	keep := 100
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			log.Fatalf("invalid keep count %q", args[0])
		}
		keep = n
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := repository.NewVersionRepository(db).Prune(ctx, keep)
	if err != nil {
		log.Fatalf("prune versions: %v", err)
	}
	log.Printf("pruned %d versions (kept newest %d per project)", deleted, keep)
}

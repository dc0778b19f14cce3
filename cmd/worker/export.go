package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/arkiform/go-plan-backend/config"
	"github.com/arkiform/go-plan-backend/internal/editor/repository"
	"github.com/arkiform/go-plan-backend/internal/storage/postgres"
)

// RunExport writes a project's latest saved snapshot to a file (or stdout).
func RunExport(args []string) {
	if len(args) < 1 {
		log.Fatal("usage: worker export <project_public_id> [out.json]")
	}
	projectID := args[0]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ver, err := repository.NewVersionRepository(db).Latest(ctx, projectID)
	if err != nil {
		log.Fatalf("load latest version of %s: %v", projectID, err)
	}

	if len(args) > 1 {
		if err := os.WriteFile(args[1], ver.Snapshot, 0o644); err != nil {
			log.Fatalf("write %s: %v", args[1], err)
		}
		log.Printf("exported %s version %d to %s", projectID, ver.VersionNumber, args[1])
		return
	}

	if _, err := os.Stdout.Write(append(ver.Snapshot, '\n')); err != nil {
		log.Fatalf("write snapshot: %v", err)
	}
}

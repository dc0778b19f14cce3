package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker <prune-versions|export> [args]")
	}

	switch os.Args[1] {
	case "prune-versions":
		RunPruneVersions(os.Args[2:])
	case "export":
		RunExport(os.Args[2:])
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

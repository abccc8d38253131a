// Package main provides the entry point for the reasoning kernel.
//
// It reads NAL/NALQ statements line by line from stdin and prints the
// resulting edge ID, query answer, or error to stdout. It is a thin driver
// meant for scripted or piped use; there is no flag parsing and no
// interactive UI surface.
//
// Environment variables:
//   - NARS_DEBUG: set to "true" to enable debug logging
//   - NARS_SNAPSHOT_PATH: sqlite file for snapshot persistence (optional)
//   - NARS_SEMANTIC_PATH: chromem-go persistence directory (optional)
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/automenta/hypernars1-sub000/internal/config"
	"github.com/automenta/hypernars1-sub000/internal/kernel"
	"github.com/automenta/hypernars1-sub000/internal/persist"
	"github.com/automenta/hypernars1-sub000/internal/semantic"
)

func main() {
	if os.Getenv("NARS_DEBUG") == "true" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		log.Println("Starting reasoning kernel in debug mode...")
	}

	cfg := config.FromEnv()
	k := kernel.New(cfg)
	log.Println("Initialized kernel")

	k.On(func(e kernel.Event) {
		if cfg.LogLevel == "debug" {
			log.Printf("event %s: %v", e.Type, e.Data)
		}
	})

	var snapStore *persist.Store
	if path := os.Getenv("NARS_SNAPSHOT_PATH"); path != "" {
		store, err := persist.NewStore(path)
		if err != nil {
			log.Fatalf("Failed to open snapshot store: %v", err)
		}
		defer store.Close()
		snapStore = store
		k.SetSeenTracker(store)
		log.Printf("Opened snapshot store at %s", path)
	}

	if path := os.Getenv("NARS_SEMANTIC_PATH"); path != "" {
		ix, err := semantic.NewPersistentIndex(path)
		if err != nil {
			log.Fatalf("Failed to open semantic index: %v", err)
		}
		k.SetSemanticIndex(ix)
		log.Printf("Opened semantic index at %s", path)
	}

	log.Println("Reading NAL/NALQ statements from stdin")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == ":step":
			k.Step()
			continue
		case line == ":metrics":
			fmt.Printf("%+v\n", k.Metrics())
			continue
		case strings.HasPrefix(line, ":save "):
			saveSnapshot(k, snapStore, strings.TrimPrefix(line, ":save "))
			continue
		case strings.HasPrefix(line, ":load "):
			loadSnapshot(k, snapStore, strings.TrimPrefix(line, ":load "))
			continue
		}

		if strings.HasSuffix(line, "?") {
			pq, err := k.NALQ(line, kernel.AskOptions{})
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("question %s: %d candidate answer(s) so far\n", pq.ID, len(pq.Answers))
			continue
		}

		id, err := k.NAL(line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(id)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Error reading stdin: %v", err)
	}
}

func saveSnapshot(k *kernel.Kernel, store *persist.Store, id string) {
	if store == nil {
		fmt.Println("error: NARS_SNAPSHOT_PATH not configured")
		return
	}
	if err := k.SaveTo(store, id); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("saved", id)
}

func loadSnapshot(k *kernel.Kernel, store *persist.Store, id string) {
	if store == nil {
		fmt.Println("error: NARS_SNAPSHOT_PATH not configured")
		return
	}
	if err := k.RestoreFrom(store, id); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("restored", id)
}

// stub-backend is a local stand-in for the rewards platform API. It serves
// the endpoints the dashboard consumes over seeded in-memory state, plus an
// /admin/* control plane for resetting state and injecting faults.
//
// Integration method: point POINTSDASH_API_URL at this process.
package main

import (
	"log"
	"os"
	"time"

	"github.com/pointsdash/pointsdash/internal/stub/admin"
	"github.com/pointsdash/pointsdash/internal/stub/api"
	"github.com/pointsdash/pointsdash/internal/stub/server"
	"github.com/pointsdash/pointsdash/internal/stub/store"
)

func main() {
	cfg := server.ParseFlags("stub-backend")
	if cfg.Port == 0 {
		cfg.Port = 8095
	}

	stub := server.New(cfg)
	memStore := store.New()
	memStore.SeedDefaults()

	// API handlers
	apiHandler := api.NewHandler(memStore, stub.Middleware())
	apiHandler.Routes(stub.Router)

	// Admin control plane
	adminHandler := admin.NewHandler(memStore, stub.Middleware(), memStore.Clock)
	adminHandler.Routes(stub.Router)

	// Load seed data if provided
	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			log.Fatalf("failed to read seed file: %v", err)
		}
		if err := memStore.LoadState(data); err != nil {
			log.Fatalf("failed to load seed data: %v", err)
		}
		stub.Logger.Info("loaded seed data", "file", cfg.SeedFile)
	}

	// A ready-to-use session for the seed user, so the CLI can be pointed at
	// this process without a login flow.
	token, err := api.MintToken(store.SeedUserEmail, 24*time.Hour)
	if err != nil {
		log.Fatalf("failed to mint dev token: %v", err)
	}

	stub.Logger.Info("stub-backend ready",
		"port", cfg.Port,
		"seed_user", store.SeedUserEmail,
		"dev_token", token,
	)

	if err := stub.Serve(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

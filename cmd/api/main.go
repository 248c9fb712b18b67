package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/se1907800-collab/mediavalut/internal/api/handlers"
	"github.com/se1907800-collab/mediavalut/internal/api/routes"
	"github.com/se1907800-collab/mediavalut/internal/config"
	"github.com/se1907800-collab/mediavalut/internal/library"
	"github.com/se1907800-collab/mediavalut/internal/store"
	"github.com/se1907800-collab/mediavalut/internal/tree"
	"github.com/se1907800-collab/mediavalut/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx := context.Background()

	// Initialize snapshot stores. The local bbolt store doubles as the
	// write-through backup behind the remote backends.
	local, err := store.OpenLocal(cfg.Storage.Local.Path)
	if err != nil {
		log.Fatal("Failed to open local store:", err)
	}
	defer local.Close()

	var primary store.Adapter = local
	var backup store.Adapter
	var document *store.DocumentStore

	switch cfg.Storage.Backend {
	case "local":
		// Nothing else to wire.
	case "static":
		primary = store.NewStatic(cfg.Storage.Static.SnapshotURL, cfg.Storage.Static.Timeout)
		backup = local
	case "document":
		document, err = store.OpenDocument(cfg.Storage.Document.DSN(), cfg.Storage.Document.InstallID)
		if err != nil {
			log.Fatal("Failed to open document store:", err)
		}
		primary = document
		backup = local
	default:
		log.Fatal("Unknown storage backend: ", cfg.Storage.Backend)
	}

	// Initialize the library and the notification hub
	lib := library.Open(ctx, primary, backup)
	hub := websocket.NewManager()
	lib.SetOnReplace(func(snap *tree.Snapshot) {
		hub.BroadcastSnapshotReplaced(snap.LastUpdated)
	})

	// The document backend pushes remote writes through the reconciler.
	if document != nil {
		go document.Watch(ctx, cfg.Storage.Document.PollInterval, func(snap *tree.Snapshot) {
			lib.ApplyRemote(snap)
		})
	}

	// Initialize Router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Initialize Routes
	h := handlers.New(cfg, lib, hub)
	routes.SetupRoutes(router, h, cfg)

	// Start Server
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

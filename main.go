package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/retroboard/auth"
	"github.com/danielhkuo/retroboard/cliparse"
	"github.com/danielhkuo/retroboard/db"
	"github.com/danielhkuo/retroboard/hub"
	"github.com/danielhkuo/retroboard/registry"
	"github.com/danielhkuo/retroboard/router"
	"github.com/danielhkuo/retroboard/snapshot"
)

// shutdownTimeout bounds the final snapshot flush
const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	ctx := context.Background()

	// Open the snapshot store and rehydrate rooms
	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("snapshot store unavailable", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	slog.Info("Snapshot store ready", "store", cfg.Store)

	reg, err := registry.Open(ctx, store, registry.Options{
		Columns:  cfg.Columns,
		MaxVotes: cfg.MaxVotes,
	})
	if err != nil {
		store.Close()
		slog.Error("registry restore failed", "error", err)
		os.Exit(1)
	}

	h := hub.New(auth.NewAuthenticator(reg))
	h.SetQueueSize(cfg.QueueSize)

	// Create router
	r := router.NewRouter(reg, h, cfg)

	// Create server
	server := http.Server{
		Handler: r,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "rooms", len(reg.ListRoomIDs()))
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Hijacked websocket connections outlive server.Close
	h.Close()

	flushCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := reg.Close(flushCtx); err != nil {
		slog.Error("final snapshot failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Final snapshot written")
}

func openStore(ctx context.Context, cfg cliparse.Config) (snapshot.Store, error) {
	switch cfg.Store {
	case cliparse.StoreMemory:
		slog.Warn("memory store selected, rooms will not survive a restart")
		return snapshot.NewMemoryStore(), nil

	case cliparse.StoreFile:
		store, err := snapshot.NewFileStore(cfg.SnapshotFile)
		if err != nil {
			return nil, err
		}
		slog.Info("Snapshot file resolved", "path", store.Path())
		return store, nil

	case cliparse.StoreSQLite, cliparse.StorePostgres:
		conn, err := db.Open(cfg.Store, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := snapshot.NewSQLStore(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return store, nil

	case cliparse.StoreRedis:
		store, err := snapshot.NewRedisStore(cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case cliparse.StoreS3:
		store, err := snapshot.NewS3Store(ctx, snapshot.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Region:          cfg.S3.Region,
			AccessKey:       cfg.S3.AccessKey,
			SecretKey:       cfg.S3.SecretKey,
			UsePathStyle:    cfg.S3.PathStyle,
			DisableChecksum: cfg.S3.DisableChecksum,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

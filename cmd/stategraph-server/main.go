// Command stategraph-server serves registered graphs over HTTP. Graph
// definitions are YAML files loaded from a directory at startup.
//
// Environment (a .env file is honored):
//
//	STATEGRAPH_ADDR        listen address, default :8080
//	STATEGRAPH_GRAPHS_DIR  directory of *.yaml definitions, default ./graphs
//	STATEGRAPH_SQLITE_PATH checkpoint database; empty keeps checkpoints in memory
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/stategraph/stategraph/internal/adapters/httpapi"
	"github.com/stategraph/stategraph/internal/adapters/repository/memory"
	"github.com/stategraph/stategraph/internal/adapters/repository/sqlite"
	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/declarative"
	"github.com/stategraph/stategraph/internal/infrastructure/logging"
	"github.com/stategraph/stategraph/pkg/registry"
)

func main() {
	_ = godotenv.Load()
	log := logging.New(slog.LevelInfo)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saver, cleanup, err := newSaver(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	server := httpapi.New(httpapi.WithLogger(log), httpapi.WithSaver(saver))
	if err := loadGraphs(server, log); err != nil {
		return err
	}

	addr := envOr("STATEGRAPH_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newSaver(ctx context.Context) (checkpoint.Saver, func(), error) {
	if path := os.Getenv("STATEGRAPH_SQLITE_PATH"); path != "" {
		s, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return memory.NewSaver(), func() {}, nil
}

func loadGraphs(server *httpapi.Server, log *slog.Logger) error {
	dir := envOr("STATEGRAPH_GRAPHS_DIR", "graphs")
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return err
	}
	reg := registry.New()
	for _, path := range paths {
		loaded, err := declarative.LoadFile(path, reg)
		if err != nil {
			return err
		}
		server.Register(loaded.Graph)
		log.Info("graph registered", "name", loaded.Graph.Name(), "file", path)
	}
	if len(paths) == 0 {
		log.Warn("no graph definitions found", "dir", dir)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

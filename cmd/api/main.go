package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/scythe504/drawguess-backend/internal/common/clock"
	"github.com/scythe504/drawguess-backend/internal/config"
	"github.com/scythe504/drawguess-backend/internal/database"
	"github.com/scythe504/drawguess-backend/internal/game"
	"github.com/scythe504/drawguess-backend/internal/logger"
	"github.com/scythe504/drawguess-backend/internal/server"
	"github.com/scythe504/drawguess-backend/internal/utils"
	"github.com/scythe504/drawguess-backend/internal/websocket"
)

func gracefulShutdown(apiServer *http.Server, registry *game.Registry, db database.Service, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	zap.S().Info("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		zap.S().Errorf("Server forced to shutdown with error: %v", err)
	}

	registry.Close()
	if err := db.Close(); err != nil {
		zap.S().Errorf("closing database: %v", err)
	}

	zap.S().Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func loadWords(path string) ([]string, error) {
	if path == "" {
		return game.DefaultWords, nil
	}
	words, err := utils.ReadCsvFile(path)
	if err != nil {
		return nil, err
	}
	words = utils.CleanWordList(words)
	if len(words) == 0 {
		return nil, fmt.Errorf("word file %s has no words", path)
	}
	return words, nil
}

func openDatabase(url string) database.Service {
	if url == "" {
		zap.S().Info("DATABASE_URL not set, finished games will not be archived")
		return database.NewNoop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, url)
	if err != nil {
		zap.S().Warnf("database unavailable, archiving disabled: %v", err)
		return database.NewNoop()
	}
	return db
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("invalid configuration: %s", err))
	}

	logger.InitLogger(cfg.LogLevel)
	defer zap.L().Sync()

	words, err := loadWords(cfg.WordsFile)
	if err != nil {
		zap.S().Fatalf("cannot load words: %v", err)
	}
	selector, err := game.NewWordSelector(words, 0)
	if err != nil {
		zap.S().Fatalf("cannot build word selector: %v", err)
	}

	db := openDatabase(cfg.DatabaseURL)

	hub := websocket.NewHub()
	registry, err := game.NewRegistry(&game.Config{
		Transport:            hub,
		Words:                selector,
		Clock:                &clock.DefaultClock{},
		Archiver:             db,
		RoundDurationSeconds: cfg.RoundDurationSeconds,
		MaxRounds:            cfg.MaxRounds,
		RevealDelay:          cfg.RevealDelay(),
		MaxPlayers:           cfg.MaxPlayersPerRoom,
	})
	if err != nil {
		zap.S().Fatalf("cannot build registry: %v", err)
	}

	apiServer := server.NewServer(server.Options{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		DB:             db,
		Registry:       registry,
		WebSocket:      websocket.NewHandler(hub, registry, cfg.AllowedOrigins),
	})

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, registry, db, done)

	zap.S().Infof("listening on %s (%d words, %d rounds of %ds)", apiServer.Addr, len(words), cfg.MaxRounds, cfg.RoundDurationSeconds)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	zap.S().Info("Graceful shutdown complete.")
}

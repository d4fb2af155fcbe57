package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"catalog-backend/internal/config"
	"catalog-backend/internal/database"
	"catalog-backend/internal/logger"
	"catalog-backend/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	migrationStatus := flag.Bool("migration-status", false, "print the migration status and exit")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	dbService, err := database.New(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	db := dbService.DB()

	if *migrationStatus {
		if err := database.GetMigrationStatus(db, cfg.Server.MigrationsDir); err != nil {
			log.Fatal("Failed to read migration status", zap.Error(err))
		}
		dbService.Close()
		return
	}

	if err := database.RunMigrations(db, cfg.Server.MigrationsDir, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		// the limiter lets requests through while redis is down
		log.Warn("Redis unavailable, rate limiting disabled until it recovers", zap.Error(err))
	}
	cancel()

	srv := server.NewServer(cfg, log, dbService, redisClient)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}

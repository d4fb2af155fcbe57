package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"catalog-backend/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	// DB exposes the underlying connection pool.
	DB() *sql.DB

	// Close terminates the database connection.
	Close() error
}

type service struct {
	db     *sql.DB
	logger *zap.Logger
}

// DSN builds a postgres connection string from the database config
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + cfg.Port,
		Path:   "/" + cfg.Database,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	if cfg.Schema != "" {
		q.Set("search_path", cfg.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// New opens a pooled connection using the pgx stdlib driver and verifies it
// with a ping.
func New(cfg config.DatabaseConfig, logger *zap.Logger) (Service, error) {
	db, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)

	return &service{db: db, logger: logger}, nil
}

// Health checks the health of the database connection by pinging the database.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.Error("Database ping failed", zap.Error(err))
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.OpenConnections > 40 {
		stats["message"] = "The database is experiencing heavy load."
	}

	return stats
}

func (s *service) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *service) Close() error {
	s.logger.Info("Disconnected from database")
	return s.db.Close()
}

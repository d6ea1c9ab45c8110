package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"validity-service/internal/config"
)

// Database представляет соединение с базой данных
type Database struct {
	*sqlx.DB
}

// NewDatabase создает новое соединение с базой данных
func NewDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database",
		zap.String("host", cfg.Host),
		zap.String("dbname", cfg.DBName),
	)

	return &Database{db}, nil
}

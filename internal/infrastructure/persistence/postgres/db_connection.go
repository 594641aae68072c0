// Package postgres provides PostgreSQL access for the gridrisk scoring service:
// the pgx connection pool used by reporting and health checks, the GORM handle
// used by the fact and profile repositories, and schema migration.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// DBConnection manages PostgreSQL database connection pool lifecycle.
// It provides thread-safe connection pool with automatic health monitoring.
type DBConnection struct {
	pool   *pgxpool.Pool
	config *config.DatabaseConfig
	logger logger.Logger
}

// NewDBConnection creates a new PostgreSQL connection manager instance.
// It initializes connection pool with configuration parameters and performs initial health check.
//
// Parameters:
//   - ctx: Context for connection timeout control
//   - cfg: Database configuration including host, port, credentials, and pool settings
//   - log: Logger instance for connection lifecycle events
//
// Returns:
//   - *DBConnection: Initialized connection manager
//   - error: Connection establishment error if any
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*DBConnection, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfiguration("database configuration is missing")
	}
	log = log.WithComponent("postgres")

	log.Info(ctx, "Initializing PostgreSQL connection pool", logger.Fields{
		"host":      cfg.Host,
		"port":      cfg.Port,
		"database":  cfg.Database,
		"max_conns": cfg.MaxConns,
		"min_conns": cfg.MinConns,
	})

	poolConfig, err := pgxpool.ParseConfig(cfg.GetURL())
	if err != nil {
		log.Error(ctx, "Failed to parse database connection string", err)
		return nil, errors.ErrDatabaseOperation("parse_config", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Minute
	poolConfig.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleTime) * time.Minute

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		log.Error(ctx, "Failed to create database connection pool", err)
		return nil, errors.ErrDatabaseOperation("connect", err)
	}

	dbConn := &DBConnection{
		pool:   pool,
		config: cfg,
		logger: log,
	}

	// Perform initial health check
	if err := dbConn.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info(ctx, "PostgreSQL connection pool initialized successfully", logger.Fields{
		"total_conns": pool.Stat().TotalConns(),
		"idle_conns":  pool.Stat().IdleConns(),
	})

	return dbConn, nil
}

// Ping verifies database connectivity and responsiveness.
func (db *DBConnection) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startTime := time.Now()
	if err := db.pool.Ping(pingCtx); err != nil {
		db.logger.Error(ctx, "Database ping failed", err)
		return errors.ErrTemporarilyUnavailable("database unreachable").WithCause(err)
	}

	latency := time.Since(startTime)
	if latency > 100*time.Millisecond {
		db.logger.Warn(ctx, "High database latency detected", logger.Fields{
			"latency_ms":   latency.Milliseconds(),
			"threshold_ms": 100,
		})
	}
	return nil
}

// Close gracefully shuts down the connection pool.
func (db *DBConnection) Close() {
	db.logger.Info(context.Background(), "Closing PostgreSQL connection pool", logger.Fields{
		"total_conns": db.pool.Stat().TotalConns(),
	})
	db.pool.Close()
}

// OpenGorm opens the GORM handle used by the repositories.
func OpenGorm(cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfiguration("database configuration is missing")
	}
	db, err := gorm.Open(gormpostgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error(context.Background(), "Failed to open gorm connection", err)
		return nil, errors.ErrDatabaseOperation("gorm_open", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.ErrDatabaseOperation("gorm_pool", err)
	}
	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MinConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.MaxConnIdleTime) * time.Minute)
	return db, nil
}

// AutoMigrate creates or updates the warehouse and profile tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&EntityRow{},
		&AttributeRow{},
		&EventRow{},
		&AddressRow{},
		&RelationshipRow{},
		&RiskProfileRow{},
	); err != nil {
		return errors.ErrDatabaseOperation("auto_migrate", fmt.Errorf("migrate: %w", err))
	}
	return nil
}

//Personal.AI order the ending

package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"trivia-api/config"
	"trivia-api/models"
	"trivia-api/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the shared connection pool. Repositories borrow connections
// from it per call and release them when the statement finishes.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := withStatementTimeout(cfg.URL, cfg.StatementTimeout)

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(utils.Log, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping the database: %w", err)
	}

	utils.LogInfo("Database connected", map[string]interface{}{
		"max_open_conns":    cfg.MaxOpenConns,
		"statement_timeout": cfg.StatementTimeout.String(),
	})
	return conn, nil
}

// Migrate creates or updates the trivia schema. Parents are listed before
// the tables that reference them.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.Category{},
		&models.Game{},
		&models.Clue{},
		&models.GameDefinition{},
		&models.GameDefinitionClue{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	utils.Log.Info("Database migrated")
	return nil
}

// Close releases every pooled connection.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the store is reachable.
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// withStatementTimeout passes statement_timeout to the server as a runtime
// parameter. Both URL and keyword/value DSNs are supported.
func withStatementTimeout(dsn string, d time.Duration) string {
	if d <= 0 {
		return dsn
	}
	ms := fmt.Sprintf("%d", d.Milliseconds())

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		if q.Get("statement_timeout") == "" {
			q.Set("statement_timeout", ms)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	if strings.Contains(dsn, "statement_timeout=") {
		return dsn
	}
	return strings.TrimSpace(dsn + " statement_timeout=" + ms)
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

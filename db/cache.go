// Package db connects to the dependency package cache backing the
// definition store (SPEC_FULL.md §4.9): one schema, three possible
// backends selected by the DSN's scheme.
package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	gsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oxhq/fshc/models"
)

// Connect opens the cache database named by dsn and runs migrations.
// dsn selects the backend by scheme: "postgres://"/"postgresql://" for
// Postgres, "libsql://"/"https://" for a shared Turso cache, anything
// else is treated as a SQLite file path (the pure-Go glebarez driver,
// so fshc never requires cgo to run).
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	switch {
	case isPostgres(dsn):
		return connectPostgres(dsn, config)
	case isLibSQL(dsn):
		return connectLibSQL(dsn, config)
	default:
		return connectSQLiteFile(dsn, config)
	}
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func isLibSQL(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "https://")
}

func connectSQLiteFile(dsn string, config *gorm.Config) (*gorm.DB, error) {
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	gdb, err := gorm.Open(gsqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Exec("PRAGMA foreign_keys = ON")
	}
	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return gdb, nil
}

func connectLibSQL(dsn string, config *gorm.Config) (*gorm.DB, error) {
	var (
		connector driver.Connector
		err       error
	)
	if token := os.Getenv("FSHC_LIBSQL_AUTH_TOKEN"); token != "" {
		connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
	} else {
		connector, err = libsql.NewConnector(dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create libsql connector: %w", err)
	}

	conn := sql.OpenDB(connector)
	dialector := sqlite.New(sqlite.Config{
		DriverName: "libsql",
		Conn:       conn,
		DSN:        dsn,
	})

	gdb, err := gorm.Open(dialector, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return gdb, nil
}

func connectPostgres(dsn string, config *gorm.Config) (*gorm.DB, error) {
	if err := ensurePostgresDatabase(dsn); err != nil && config.Logger != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not ensure cache database exists: %v\n", err)
	}

	gdb, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return gdb, nil
}

// ensurePostgresDatabase creates the target database if it doesn't
// already exist, connecting to the admin "postgres" database first.
func ensurePostgresDatabase(dsn string) error {
	dbName := extractDBName(dsn)
	if dbName == "" {
		return fmt.Errorf("could not extract database name from DSN")
	}
	adminDSN := strings.Replace(dsn, "/"+dbName, "/postgres", 1)

	admin, err := gorm.Open(postgres.Open(adminDSN), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	sqlDB, err := admin.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var exists bool
	admin.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", dbName).Scan(&exists)
	if !exists {
		if err := admin.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)).Error; err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}
	return nil
}

func extractDBName(dsn string) string {
	parts := strings.Split(dsn, "/")
	if len(parts) < 4 {
		return ""
	}
	dbPart := parts[3]
	if idx := strings.Index(dbPart, "?"); idx > 0 {
		dbPart = dbPart[:idx]
	}
	return dbPart
}

// Migrate runs the cache schema migration.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&models.CachedDefinition{})
}

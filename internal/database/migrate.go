package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration directions accepted by Migrate.
const (
	Up   = "up"
	Down = "down"
)

// Migrate applies (up) or reverts (down) the embedded schema migrations.
func Migrate(cfg config.DBConfig, direction string, log *zap.Logger) error {
	return MigrateDSN(cfg.DSN(), direction, log)
}

// MigrateDSN is Migrate for a raw go-sql-driver/mysql DSN.  Migration files
// hold several statements each, so it opens its own connection with
// multiStatements enabled instead of reusing the pool.
func MigrateDSN(dsn, direction string, log *zap.Logger) error {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("mysql", dsn+sep+"multiStatements=true")
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	switch direction {
	case Up, "":
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		log.Info("database schema is empty")
	case dirty:
		log.Warn("database migration is dirty", zap.Uint("version", version))
	default:
		log.Info("database migration complete", zap.Uint("version", version), zap.String("direction", direction))
	}
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

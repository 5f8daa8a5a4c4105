package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"studyhub/internal/logger"

	"go.uber.org/zap"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// Migrations returns the embedded schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// ORA-00955: name is already used by an existing object.
const oraObjectExists = "ORA-00955"

// Execer is satisfied by *sql.DB and *sqlx.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RunMigrations executes every *.up.sql file of migrations in name order.
// Each file holds a single statement without a trailing semicolon, as go-ora requires.
// Objects that already exist are skipped so the command can be re-run.
func RunMigrations(ctx context.Context, db Execer, migrations fs.FS) error {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	log := logger.Get()
	for _, name := range names {
		content, err := fs.ReadFile(migrations, name)
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		stmt := strings.TrimSuffix(strings.TrimSpace(string(content)), ";")
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), oraObjectExists) {
				log.Info("Migration already applied", zap.String("file", name))
				continue
			}
			return fmt.Errorf("could not execute migration %s: %w", name, err)
		}
		log.Info("Executed migration", zap.String("file", name))
	}

	log.Info("Migrations completed successfully", zap.Int("files", len(names)))
	return nil
}

// Package migrations embeds the goose SQL migrations for every supported store.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

// Dialect directories under FS.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

var gooseDialects = map[string]string{
	Postgres: "postgres",
	SQLite:   "sqlite3",
}

// goose keeps its dialect and base FS in package globals.
var mu sync.Mutex

// Up applies every pending migration for dialect to db. A nil logger
// silences goose.
func Up(db *sql.DB, dialect string, logger goose.Logger) error {
	gd, ok := gooseDialects[dialect]
	if !ok {
		return fmt.Errorf("goose: unknown dialect %q", dialect)
	}

	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = goose.NopLogger()
	}
	goose.SetLogger(logger)
	goose.SetBaseFS(FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(gd); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, dialect); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

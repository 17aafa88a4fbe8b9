package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// schemaTemplate is rendered per dialect: {{ID}} is the auto-increment
// primary key and {{TS}} the timestamp column type.
var schemaTemplate = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id {{ID}},
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		birth_date DATE NOT NULL,
		total_words_count BIGINT NOT NULL DEFAULT 0,
		violent_words_count BIGINT NOT NULL DEFAULT 0,
		created_at {{TS}} NOT NULL,
		updated_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_employees_name ON employees (first_name, last_name)`,
	`CREATE TABLE IF NOT EXISTS violent_word_occurrences (
		id {{ID}},
		employee_id BIGINT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		word TEXT NOT NULL,
		detected_at {{TS}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_violent_words_employee ON violent_word_occurrences (employee_id, detected_at)`,
	`CREATE TABLE IF NOT EXISTS psychological_themes (
		id {{ID}},
		name VARCHAR(100) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS employee_theme_counters (
		id {{ID}},
		employee_id BIGINT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		theme_id BIGINT NOT NULL REFERENCES psychological_themes(id) ON DELETE CASCADE,
		count BIGINT NOT NULL DEFAULT 0,
		UNIQUE (employee_id, theme_id)
	)`,
}

func schemaFor(driver string) []string {
	id, ts := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if driver == "sqlite" {
		id, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	}
	r := strings.NewReplacer("{{ID}}", id, "{{TS}}", ts)

	stmts := make([]string, len(schemaTemplate))
	for i, s := range schemaTemplate {
		stmts[i] = r.Replace(s)
	}
	return stmts
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaFor(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

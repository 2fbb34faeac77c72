package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

// Timestamps are stored as UTC wall-clock TIMESTAMP columns; every writer passes UTC times.
//
//go:embed schema.sql
var schema string

// Migrate creates the account tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements(schema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database.Migrate: %w", err)
		}
	}
	return nil
}

func statements(script string) []string {
	var out []string
	for _, chunk := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(chunk); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

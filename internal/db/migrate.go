package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
)

func ApplyMigrationFile(sqdb *sql.DB, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := sqdb.Exec(string(b)); err != nil && !isAlreadyExistsErr(err) {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

func isAlreadyExistsErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

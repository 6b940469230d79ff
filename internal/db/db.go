package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects to the configured backing store. sqlite is the embedded
// default; pgx and mysql are accepted for deployments with an external
// database.
func Open(driver, dsn string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	if driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dsn)
	}
	sqdb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	sqdb.SetMaxOpenConns(maxOpen)
	sqdb.SetMaxIdleConns(maxIdle)
	sqdb.SetConnMaxLifetime(maxLifetime)
	if err := sqdb.Ping(); err != nil {
		return nil, err
	}
	return sqdb, nil
}

// Rebind rewrites ? placeholders to $1..$n for drivers that need ordinal
// placeholders. Queries in the store are written with ? and rebound once
// per call site.
func Rebind(driver, query string) string {
	if !strings.Contains(strings.ToLower(driver), "pgx") && !strings.Contains(strings.ToLower(driver), "postgres") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

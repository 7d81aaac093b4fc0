//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// schema is applied once per container. Join tables cascade on entity
// deletion so stores never have to clean adjacency rows themselves.
const schema = `
CREATE TABLE users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT,
	password_hash TEXT NOT NULL DEFAULT ''
);

CREATE TABLE roles (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT
);

CREATE TABLE permissions (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT
);

CREATE TABLE resources (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL UNIQUE,
	description TEXT
);

CREATE TABLE user_roles (
	user_id   TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	role_name TEXT NOT NULL REFERENCES roles (name) ON DELETE CASCADE ON UPDATE CASCADE,
	PRIMARY KEY (user_id, role_name)
);

CREATE TABLE role_permissions (
	role_name       TEXT NOT NULL REFERENCES roles (name) ON DELETE CASCADE ON UPDATE CASCADE,
	permission_name TEXT NOT NULL REFERENCES permissions (name) ON DELETE CASCADE ON UPDATE CASCADE,
	PRIMARY KEY (role_name, permission_name)
);

CREATE TABLE resource_permissions (
	resource_path   TEXT NOT NULL REFERENCES resources (path) ON DELETE CASCADE ON UPDATE CASCADE,
	permission_name TEXT NOT NULL REFERENCES permissions (name) ON DELETE CASCADE ON UPDATE CASCADE,
	PRIMARY KEY (resource_path, permission_name)
);

CREATE TABLE ip_records (
	id         TEXT PRIMARY KEY,
	address    TEXT NOT NULL UNIQUE,
	suspicious BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE ip_identity_links (
	address     TEXT NOT NULL REFERENCES ip_records (address) ON DELETE CASCADE,
	identity_id TEXT NOT NULL,
	PRIMARY KEY (address, identity_id)
);

CREATE TABLE access_attempts (
	id            TEXT PRIMARY KEY,
	timestamp     TIMESTAMPTZ NOT NULL,
	identity_id   TEXT,
	username      TEXT,
	resource_path TEXT,
	ip_address    TEXT,
	user_agent    TEXT,
	status        TEXT NOT NULL,
	reason        TEXT NOT NULL
);

CREATE INDEX access_attempts_timestamp_idx ON access_attempts (timestamp DESC);
`

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// applied.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container, applies the schema, and
// registers cleanup with t.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("access_gate_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
		tcpostgres.WithSQLDriver("postgres"),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

// TruncateTables empties the named tables, cascading to dependents. Use
// between tests to ensure isolation.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	query := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

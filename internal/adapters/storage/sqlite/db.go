// Package sqlite es el record store embebido (modernc, sin cgo).
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"

	"foster-tracker/internal/adapters/storage/sqlstore"
	"foster-tracker/internal/query"
)

// Timestamps en INTEGER (unix nanos) y booleanos en 0/1, ver query.SQLite.
const Schema = `
CREATE TABLE IF NOT EXISTS animals (
	id                     TEXT PRIMARY KEY,
	organization_id        TEXT NOT NULL,
	name                   TEXT NOT NULL DEFAULT '',
	status                 TEXT NOT NULL,
	sex_spay_neuter_status TEXT,
	life_stage             TEXT NOT NULL,
	priority               INTEGER NOT NULL DEFAULT 0,
	foster_visibility      TEXT NOT NULL,
	group_id               TEXT,
	current_foster_id      TEXT,
	date_of_birth          INTEGER,
	created_at             INTEGER NOT NULL,
	updated_at             INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS animals_org_created_idx ON animals (organization_id, created_at);

CREATE TABLE IF NOT EXISTS animal_groups (
	id                TEXT PRIMARY KEY,
	organization_id   TEXT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	animal_ids        TEXT NOT NULL DEFAULT '[]',
	priority          INTEGER NOT NULL DEFAULT 0,
	current_foster_id TEXT,
	created_at        INTEGER NOT NULL,
	updated_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS animal_groups_org_created_idx ON animal_groups (organization_id, created_at);
`

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(query.FoldFunc, 1, foldCase)
}

// foldCase pliega igual que el filtro en memoria (strings.ToLower), también
// fuera de ASCII.
func foldCase(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Open abre (o crea) la base en path y aplica el schema. ":memory:" sirve
// para tests; en ese caso se limita el pool a una conexión para que todas
// vean la misma base.
func Open(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return db, nil
}

func NewAnimalsRepo(db *sql.DB) *sqlstore.AnimalsRepo {
	return sqlstore.NewAnimalsRepo(db, query.SQLite)
}

func NewGroupsRepo(db *sql.DB) *sqlstore.GroupsRepo {
	return sqlstore.NewGroupsRepo(db, query.SQLite)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const Schema = `
CREATE TABLE IF NOT EXISTS animals (
	id                     TEXT PRIMARY KEY,
	organization_id        TEXT NOT NULL,
	name                   TEXT NOT NULL DEFAULT '',
	status                 TEXT NOT NULL,
	sex_spay_neuter_status TEXT,
	life_stage             TEXT NOT NULL,
	priority               BOOLEAN NOT NULL DEFAULT FALSE,
	foster_visibility      TEXT NOT NULL,
	group_id               TEXT,
	current_foster_id      TEXT,
	date_of_birth          TIMESTAMPTZ,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS animals_org_created_idx ON animals (organization_id, created_at);
CREATE INDEX IF NOT EXISTS animals_org_group_idx ON animals (organization_id, group_id);

CREATE TABLE IF NOT EXISTS animal_groups (
	id                TEXT PRIMARY KEY,
	organization_id   TEXT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	animal_ids        TEXT NOT NULL DEFAULT '[]',
	priority          BOOLEAN NOT NULL DEFAULT FALSE,
	current_foster_id TEXT,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS animal_groups_org_created_idx ON animal_groups (organization_id, created_at);
`

// Migrate crea las tablas si no existen.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

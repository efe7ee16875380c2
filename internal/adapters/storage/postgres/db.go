package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"foster-tracker/internal/adapters/storage/sqlstore"
	"foster-tracker/internal/query"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func NewAnimalsRepo(db *sql.DB) *sqlstore.AnimalsRepo {
	return sqlstore.NewAnimalsRepo(db, query.Postgres)
}

func NewGroupsRepo(db *sql.DB) *sqlstore.GroupsRepo {
	return sqlstore.NewGroupsRepo(db, query.Postgres)
}

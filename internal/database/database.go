package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderBy int

const (
	OrderByASC OrderBy = iota
	OrderByDESC
)

// Database is the single persistence handle. It is constructed explicitly and
// injected into every component that needs it.
type Database struct {
	Pool *pgxpool.Pool
}

func NewDatabase() Database {
	return Database{
		Pool: nil,
	}
}

func (db *Database) Connect(ctx context.Context, connString string) error {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("unable to parse database configuration: %w", err)
	}

	db.Pool, err = pgxpool.New(ctx, config.ConnString())
	if err != nil {
		return fmt.Errorf("unable to create database pool: %w", err)
	}

	return nil
}

func (db *Database) Close() {
	db.Pool.Close()
}

func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

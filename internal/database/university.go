package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type University struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (db *Database) GetUniversityByID(ctx context.Context, id uuid.UUID) (University, error) {
	var university University

	err := db.Pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM tbl_university WHERE id = $1`, id).Scan(
		&university.ID, &university.Name, &university.CreatedAt, &university.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return university, ErrUniversityNotFound
		}
		return university, fmt.Errorf("database: failed to scan university: %w", err)
	}
	return university, nil
}

type ListUniversitiesParams struct {
	Limit  int
	Offset int
}

func (db *Database) ListUniversities(ctx context.Context, params ListUniversitiesParams) ([]University, error) {
	var universities []University

	rows, err := db.Pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM tbl_university ORDER BY name ASC LIMIT $1 OFFSET $2`,
		params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list universities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var university University
		if err := rows.Scan(&university.ID, &university.Name, &university.CreatedAt, &university.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan university: %w", err)
		}
		universities = append(universities, university)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate universities: %w", err)
	}

	return universities, nil
}

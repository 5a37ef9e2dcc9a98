package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"unihub/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	// UniversityID is unset only for cross-tenant administrators.
	UniversityID util.Optional[uuid.UUID]
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (db *Database) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return db.GetUser(ctx, GetUserParams{ID: util.Some(id)})
}

func (db *Database) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return db.GetUser(ctx, GetUserParams{Email: util.Some(email)})
}

type GetUserParams struct {
	ID    util.Optional[uuid.UUID]
	Email util.Optional[string]
}

func (db *Database) GetUser(ctx context.Context, params GetUserParams) (User, error) {
	var user User

	var query strings.Builder
	query.WriteString(`SELECT id, name, email, password_hash, role, university_id, created_at, updated_at FROM tbl_user WHERE 1=1`)
	var args []any
	argNum := 1

	if params.ID.IsSet {
		query.WriteString(fmt.Sprintf(" AND id = $%d", argNum))
		args = append(args, params.ID.Val)
		argNum++
	}
	if params.Email.IsSet {
		query.WriteString(fmt.Sprintf(" AND email = $%d", argNum))
		args = append(args, params.Email.Val)
		argNum++
	}

	err := db.Pool.QueryRow(ctx, query.String(), args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.UniversityID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrUserNotFound
		}
		return user, fmt.Errorf("database: failed to scan user: %w", err)
	}
	return user, nil
}

type ListUsersParams struct {
	Role         util.Optional[string]
	UniversityID util.Optional[uuid.UUID]
	Limit        util.Optional[int]
}

func (db *Database) ListUsers(ctx context.Context, params ListUsersParams) ([]User, error) {
	var query strings.Builder
	query.WriteString(`SELECT id, name, email, password_hash, role, university_id, created_at, updated_at FROM tbl_user WHERE 1=1`)
	var args []any
	argNum := 1

	if params.Role.IsSet {
		query.WriteString(fmt.Sprintf(" AND role = $%d", argNum))
		args = append(args, params.Role.Val)
		argNum++
	}
	if params.UniversityID.IsSet {
		query.WriteString(fmt.Sprintf(" AND university_id = $%d", argNum))
		args = append(args, params.UniversityID.Val)
		argNum++
	}

	query.WriteString(" ORDER BY name ASC")

	if params.Limit.IsSet {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", argNum))
		args = append(args, params.Limit.Val)
		argNum++
	}

	rows, err := db.Pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.UniversityID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate users: %w", err)
	}

	return users, nil
}

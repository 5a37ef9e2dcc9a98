package identity

import (
	"context"
	"errors"
	"fmt"

	"unihub/internal/database"
	"unihub/internal/util"

	"github.com/google/uuid"
)

// Role determines what a principal may do and how far they can see.
type Role string

const (
	// RoleSuperAdmin operates across every university.
	RoleSuperAdmin Role = "super_admin"
	// RoleDean approves meeting requests for their own university.
	RoleDean Role = "dean"
	// RoleDataEntry files meeting requests for their own university.
	RoleDataEntry Role = "data_entry"
)

// Principal is the authenticated actor behind an operation. TenantID is unset
// only for super admins.
type Principal struct {
	ID       uuid.UUID
	Role     Role
	TenantID util.Optional[uuid.UUID]
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// SameTenant reports whether the principal belongs to the given university.
func (p Principal) SameTenant(universityID uuid.UUID) bool {
	return p.TenantID.IsSet && p.TenantID.Val == universityID
}

var ErrUnknownPrincipal = errors.New("identity: unknown principal")

// Resolver turns an authenticated user id into a Principal.
type Resolver struct {
	db *database.Database
}

func NewResolver(db *database.Database) Resolver {
	return Resolver{db: db}
}

func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (Principal, error) {
	user, err := r.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return Principal{}, ErrUnknownPrincipal
		}
		return Principal{}, fmt.Errorf("identity: failed to resolve principal %s: %w", userID, err)
	}

	return Principal{
		ID:       user.ID,
		Role:     Role(user.Role),
		TenantID: user.UniversityID,
	}, nil
}

package guard

import (
	"github.com/google/uuid"

	"unihub/internal/database"
	"unihub/internal/fault"
	"unihub/internal/identity"
	"unihub/internal/util"
)

// Action is an operation on a meeting that must pass authorization.
type Action string

const (
	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionEdit       Action = "edit"
	ActionEditStatus Action = "edit_status"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionAddMinutes Action = "add_minutes"
	ActionDelete     Action = "delete"
)

// Decide is the single authorization gate for meeting mutations. It is a pure
// function: nil means allow, a non-nil fault.Error carries the specific deny
// reason. Role and tenant checks run before state checks, so a cross-tenant
// dean gets Forbidden rather than InvalidState even on a decided meeting.
//
// For ActionCreate the meeting is a prototype: only UniversityID (the target
// tenant) is consulted.
func Decide(p identity.Principal, m database.Meeting, action Action) *fault.Error {
	switch action {
	case ActionCreate:
		if p.IsSuperAdmin() {
			if m.UniversityID == uuid.Nil {
				return fault.NoTenant("a target university is required to create a meeting")
			}
			return nil
		}
		if !p.TenantID.IsSet {
			return fault.NoTenant("your account is not linked to a university")
		}
		if m.UniversityID != p.TenantID.Val {
			return fault.Forbidden("meetings can only be created for your own university")
		}
		return nil

	case ActionApprove, ActionReject:
		if !p.IsSuperAdmin() {
			if p.Role != identity.RoleDean {
				return fault.Forbidden("only a dean can decide on a meeting request")
			}
			if !p.SameTenant(m.UniversityID) {
				return fault.Forbidden("this meeting belongs to another university")
			}
		}
		if m.Status != database.MeetingStatusPending {
			return fault.InvalidState("this meeting has already been decided")
		}
		return nil

	case ActionEdit:
		if !p.IsSuperAdmin() && !p.SameTenant(m.UniversityID) {
			return fault.Forbidden("this meeting belongs to another university")
		}
		if m.Status == database.MeetingStatusCompleted {
			return fault.InvalidState("a completed meeting can no longer be edited")
		}
		return nil

	case ActionEditStatus:
		// Status may only move through approve/reject/add-minutes, except for
		// cross-tenant administrators who can set it directly.
		if !p.IsSuperAdmin() {
			return fault.Forbidden("only an administrator can change a meeting status directly")
		}
		return nil

	case ActionAddMinutes:
		if !p.IsSuperAdmin() && !p.SameTenant(m.UniversityID) {
			return fault.Forbidden("this meeting belongs to another university")
		}
		if m.Status != database.MeetingStatusApproved && m.Status != database.MeetingStatusCompleted {
			return fault.InvalidState("minutes can only be added once the meeting is approved")
		}
		return nil

	case ActionDelete:
		if !p.IsSuperAdmin() {
			return fault.Forbidden("only an administrator can delete a meeting")
		}
		return nil

	case ActionRead:
		if !p.IsSuperAdmin() && !p.SameTenant(m.UniversityID) {
			return fault.Forbidden("this meeting belongs to another university")
		}
		return nil
	}

	return fault.Forbidden("unknown action")
}

// ListScope returns the tenant filter for list queries. visible is false when
// the principal may not see any meeting at all (a tenant-less non-admin); that
// case yields an empty result set, not an error.
func ListScope(p identity.Principal) (filter util.Optional[uuid.UUID], visible bool) {
	if p.IsSuperAdmin() {
		return util.None[uuid.UUID](), true
	}
	if !p.TenantID.IsSet {
		return util.None[uuid.UUID](), false
	}
	return util.Some(p.TenantID.Val), true
}

// Package roles defines the closed set of canonical roles and permissions
// and the fail-closed normalization of free-form role spellings. Unknown
// input always maps to the lowest-privilege role, never to an escalated one.
package roles

import "strings"

// Role is a canonical authorization level. The set is closed; new roles
// require a code change.
type Role string

const (
	// SuperAdmin is the single highest-privilege role; it alone may manage
	// other accounts' roles.
	SuperAdmin Role = "super_admin"

	// ElectionAdmin manages election setup and reviews the audit trail.
	ElectionAdmin Role = "election_admin"

	// Operator records results during an election.
	Operator Role = "operator"

	// Observer is the lowest-privilege role and the fail-closed default.
	Observer Role = "observer"
)

// Permission is a closed enumeration of capabilities.
type Permission string

const (
	PermManageAccounts Permission = "manage_accounts"
	PermResetPasswords Permission = "reset_passwords"
	PermManageElection Permission = "manage_election"
	PermRecordResults  Permission = "record_results"
	PermViewAudit      Permission = "view_audit"
	PermViewReports    Permission = "view_reports"
)

// AllRoles lists the canonical roles in descending privilege order.
func AllRoles() []Role {
	return []Role{SuperAdmin, ElectionAdmin, Operator, Observer}
}

// Normalize maps a free-form/legacy role spelling to its canonical role.
// Case, spaces, underscores, hyphens, and dots are ignored. Empty or
// unrecognized input yields Observer.
func Normalize(raw string) Role {
	key := strings.ToLower(raw)
	for _, cut := range []string{" ", "_", "-", "."} {
		key = strings.ReplaceAll(key, cut, "")
	}

	switch key {
	case "superadmin", "super", "root":
		return SuperAdmin
	case "electionadmin", "admin", "administrator":
		return ElectionAdmin
	case "operator", "clerk", "teller":
		return Operator
	case "observer", "viewer", "guest":
		return Observer
	default:
		return Observer
	}
}

// PermissionsOf returns the permission set of a canonical role. The switch
// is exhaustive over the closed enumeration; anything else gets the
// Observer set.
func PermissionsOf(r Role) map[Permission]struct{} {
	switch r {
	case SuperAdmin:
		return permSet(
			PermManageAccounts,
			PermResetPasswords,
			PermManageElection,
			PermRecordResults,
			PermViewAudit,
			PermViewReports,
		)
	case ElectionAdmin:
		return permSet(
			PermManageElection,
			PermRecordResults,
			PermViewAudit,
			PermViewReports,
		)
	case Operator:
		return permSet(
			PermRecordResults,
			PermViewReports,
		)
	case Observer:
		return permSet(PermViewReports)
	default:
		return permSet(PermViewReports)
	}
}

// HasPermission reports whether role r grants p.
func HasPermission(r Role, p Permission) bool {
	_, ok := PermissionsOf(r)[p]
	return ok
}

func permSet(perms ...Permission) map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}

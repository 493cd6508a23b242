// Package policy is the single authorization point for the portal. Every
// handler and middleware that gates access by role consults this package; no
// call site re-implements role checks.
package policy

import "strings"

// Department identifies one of the four portal departments.
type Department string

const (
	LSPD  Department = "LSPD"
	LSEMS Department = "LSEMS"
	SAFD  Department = "SAFD"
	DOJ   Department = "DOJ"
)

// Departments lists all departments in display order.
var Departments = []Department{LSPD, LSEMS, SAFD, DOJ}

// Role names. Department roles are the lowercase department identifiers.
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
)

var roleToDepartment = map[string]Department{
	"lspd":  LSPD,
	"lsems": LSEMS,
	"safd":  SAFD,
	"doj":   DOJ,
}

// ParseDepartment maps a string to a Department, case-insensitively.
func ParseDepartment(s string) (Department, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LSPD):
		return LSPD, true
	case string(LSEMS):
		return LSEMS, true
	case string(SAFD):
		return SAFD, true
	case string(DOJ):
		return DOJ, true
	}
	return "", false
}

// Scope is the set of departments a user may see. When All is true the
// explicit set is ignored.
type Scope struct {
	All         bool
	Departments map[Department]bool
}

// VisibleDepartments maps a role set to the departments its holder can see.
// superadmin and admin both grant the full scope; otherwise the scope is the
// subset of departments whose lowercase role is present. An empty role set
// yields an empty scope.
func VisibleDepartments(roles []string) Scope {
	set := make(map[Department]bool)
	for _, r := range roles {
		switch r {
		case RoleSuperadmin, RoleAdmin:
			return Scope{All: true}
		default:
			if d, ok := roleToDepartment[r]; ok {
				set[d] = true
			}
		}
	}
	return Scope{Departments: set}
}

// Allows reports whether the scope covers dept.
func (s Scope) Allows(dept Department) bool {
	return s.All || s.Departments[dept]
}

// Empty reports whether the scope covers nothing.
func (s Scope) Empty() bool {
	return !s.All && len(s.Departments) == 0
}

// List returns the scoped departments in canonical order. For an All scope it
// returns every department.
func (s Scope) List() []Department {
	if s.All {
		return append([]Department(nil), Departments...)
	}
	out := make([]Department, 0, len(s.Departments))
	for _, d := range Departments {
		if s.Departments[d] {
			out = append(out, d)
		}
	}
	return out
}

// IsSuperadmin reports whether the role set contains superadmin.
func IsSuperadmin(roles []string) bool {
	for _, r := range roles {
		if r == RoleSuperadmin {
			return true
		}
	}
	return false
}

// CanModerate reports whether the role set may create, edit, or delete
// content for dept. Superadmins moderate everywhere; a department lead is
// admin combined with the matching department role.
func CanModerate(roles []string, dept Department) bool {
	if IsSuperadmin(roles) {
		return true
	}
	admin := false
	member := false
	for _, r := range roles {
		if r == RoleAdmin {
			admin = true
		}
		if roleToDepartment[r] == dept {
			member = true
		}
	}
	return admin && member
}

// ValidRole reports whether name is a grantable role.
func ValidRole(name string) bool {
	if name == RoleSuperadmin || name == RoleAdmin {
		return true
	}
	_, ok := roleToDepartment[name]
	return ok
}

package domain

import (
	"errors"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser        Role = "user"
	RoleAdmin       Role = "admin"
	RoleBackendUser Role = "backenduser"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// Roles lists every valid role.
func Roles() []Role { return []Role{RoleUser, RoleAdmin, RoleBackendUser} }

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleBackendUser:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole accepts a role name case-insensitively. An empty string is the
// default role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleUser, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

// RoleNames converts roles to strings for middleware that works on claims.
func RoleNames(roles ...Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

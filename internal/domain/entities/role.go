package entities

import (
	"fmt"
	"strings"
)

// Role identifies which side of a contract the caller acts for.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleFreelancer:
		return true
	}
	return false
}

// ParseRole normalizes a role read from a token or request.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

package usecase

import (
	"errors"
	"strings"

	"linksphere/internal/domain/entities"
)

var (
	ErrUnauthenticated = errors.New("caller not authenticated")
	ErrForbidden       = errors.New("caller is not allowed to act on this resource")
)

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID string
	Role   entities.Role
}

func (c Caller) valid() bool {
	return strings.TrimSpace(c.UserID) != "" && c.Role.Valid()
}

// authorizeParty checks that caller holds caller.Role on the contract.
func authorizeParty(caller Caller, c entities.Contract) error {
	if !caller.valid() {
		return ErrUnauthenticated
	}
	role, ok := c.PartyRole(caller.UserID)
	if !ok || role != caller.Role {
		return ErrForbidden
	}
	return nil
}

package service

import (
	"fmt"

	"go-inventory-ledger/internal/model"
)

// Session identifies the caller of an operation. It is resolved from a
// bearer token per request and passed explicitly; nothing is kept globally.
type Session struct {
	UserID       uint       `json:"user_id"`
	Username     string     `json:"username"`
	Role         model.Role `json:"role"`
	TokenVersion string     `json:"-"`
}

// SystemSession is used by operator tooling and startup seeding.
var SystemSession = Session{Username: "system", Role: model.RoleAdmin}

func (s Session) HasPrivilege(code string) bool {
	return s.Role.Has(code)
}

// Require fails with ErrForbidden unless the session's role grants code.
func (s Session) Require(code string) error {
	if !s.HasPrivilege(code) {
		return fmt.Errorf("%w: requires '%s' privilege", ErrForbidden, code)
	}
	return nil
}

func (s Session) userRef() *uint {
	if s.UserID == 0 {
		return nil
	}
	id := s.UserID
	return &id
}

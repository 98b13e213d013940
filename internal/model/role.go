package model

import (
	"fmt"
	"slices"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

var rolePrivileges = map[Role][]string{
	RoleAdmin: {
		PrivUserView, PrivUserCreate,
		PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete,
		PrivTransactionView, PrivTransactionSale, PrivTransactionPurchase,
	},
	RoleEmployee: {
		PrivProductView,
		PrivTransactionView, PrivTransactionSale,
	},
}

func (r Role) Validate() error {
	if _, ok := rolePrivileges[r]; !ok {
		return fmt.Errorf("unknown role %q", string(r))
	}
	return nil
}

// Privileges returns a copy of the privilege codes granted to r.
func (r Role) Privileges() []string {
	return slices.Clone(rolePrivileges[r])
}

func (r Role) Has(code string) bool {
	return slices.Contains(rolePrivileges[r], code)
}

// RoleInfo describes a role for API listings.
type RoleInfo struct {
	Code        Role     `json:"code"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Privileges  []string `json:"privileges"`
}

// DefaultRoles defines the roles in the system
func DefaultRoles() []RoleInfo {
	return []RoleInfo{
		{
			Code:        RoleAdmin,
			Name:        "Administrator",
			Description: "Manages the catalog, users and every stock movement",
			Privileges:  RoleAdmin.Privileges(),
		},
		{
			Code:        RoleEmployee,
			Name:        "Employee",
			Description: "Browses the catalog and records sales",
			Privileges:  RoleEmployee.Privileges(),
		},
	}
}

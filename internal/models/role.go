// Package models contains data structures for the application's domain models.
package models

import "fmt"

// Role represents a requested or granted access role.
type Role string

const (
	// RoleViewer grants read-only dashboard access.
	RoleViewer Role = "viewer"
	// RoleEditor adds budget editing for the caller's own profit center.
	RoleEditor Role = "editor"
	// RoleAdmin adds scenario, period and approval management.
	RoleAdmin Role = "admin"
	// RoleOwner adds governance, model-structure and ERP-import rights.
	RoleOwner Role = "owner"
)

// Roles lists all valid roles in increasing order of privilege.
var Roles = []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOwner}

// ParseRole validates a role token received from the wire.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleEditor, RoleAdmin, RoleOwner:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// AccountStatus represents the lifecycle status of an account.
type AccountStatus string

const (
	// StatusPending indicates an account awaiting an admin decision.
	StatusPending AccountStatus = "pending"
	// StatusApproved indicates an account with a granted role.
	StatusApproved AccountStatus = "approved"
	// StatusRejected indicates an account whose request was declined.
	StatusRejected AccountStatus = "rejected"
)

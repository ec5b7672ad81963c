package domain

import (
	"strings"
	"time"
)

// Role enumerates account kinds. Stored values in legacy data vary in
// case ("Staff", "staff", "STAFF"), so roles are parsed once at the
// boundary and compared as normalized values.
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// ParseRole normalizes a raw role string. Unknown values default to client.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleStaff):
		return RoleStaff
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleClient
	}
}

// NormalizeKey produces the matching key used for department/category
// comparisons: trimmed and lowercased. An empty key never matches.
func NormalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// User is a single account record: clients, department staff, and
// administrators all live in one collection, differentiated by Role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string // non-empty only for staff
	Number       string
	City         string
	Province     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Deleted reports whether the account is soft-deleted. Deleted staff are
// excluded from directory candidate queries.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// StaffRef is the slice of a staff record the assignment path needs.
type StaffRef struct {
	ID         string
	Name       string
	Department string
}

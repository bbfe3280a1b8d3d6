package models

import (
	"time"
)

// Profile roles. Role storage lives here; authentication itself is delegated
// to the external auth provider (the profile ID is the provider UID).
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleOperator   = "operator"
	RoleViewer     = "viewer"
)

// Profile holds the role and granular permissions of an application user
type Profile struct {
	ID        string    `gorm:"type:varchar(128);primarykey" json:"id"` // auth provider UID
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FullName    string                 `gorm:"type:varchar(255)" json:"full_name"`
	Role        string                 `gorm:"type:varchar(30);default:'viewer'" json:"role"`
	Permissions map[string]interface{} `gorm:"serializer:json" json:"permissions"`
}

// Can reports whether the profile holds a granular permission.
// super_admin implicitly holds every permission.
func (p Profile) Can(permission string) bool {
	if p.Role == RoleSuperAdmin {
		return true
	}
	v, ok := p.Permissions[permission]
	if !ok {
		return false
	}
	granted, ok := v.(bool)
	return ok && granted
}

// IsAdmin reports whether the profile has an administrative role
func (p Profile) IsAdmin() bool {
	return p.Role == RoleSuperAdmin || p.Role == RoleAdmin
}

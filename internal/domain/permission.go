package domain

import "slices"

// Permission represents granular permission (resource:action pattern) / Permission granulaire (pattern resource:action)
type Permission string

const (
	PermissionFormsWrite      Permission = "forms:write"
	PermissionResponsesSubmit Permission = "responses:submit"
	PermissionResponsesRead   Permission = "responses:read"
	PermissionReviewsWrite    Permission = "reviews:write"
	PermissionUsersManage     Permission = "users:manage"
)

// AllPermissions returns all defined permissions / Retourne toutes les permissions définies
func AllPermissions() []Permission {
	return []Permission{
		PermissionFormsWrite,
		PermissionResponsesSubmit,
		PermissionResponsesRead,
		PermissionReviewsWrite,
		PermissionUsersManage,
	}
}

// String returns permission as string / Retourne la permission en string
func (p Permission) String() string {
	return string(p)
}

// DefaultPermissionsForRole returns permissions granted to role / Retourne les permissions accordées au rôle
func DefaultPermissionsForRole(role UserRole) []Permission {
	switch role {
	case RoleAdmin:
		return AllPermissions()
	case RoleClient:
		return []Permission{PermissionResponsesSubmit, PermissionResponsesRead}
	case RoleFournisseur:
		return []Permission{PermissionReviewsWrite, PermissionResponsesRead}
	default:
		return []Permission{}
	}
}

// RoleHasPermission checks whether role grants permission / Vérifie si le rôle accorde la permission
func RoleHasPermission(role UserRole, permission Permission) bool {
	return slices.Contains(DefaultPermissionsForRole(role), permission)
}

package domain

import (
	"strings"
	"time"
)

// UserRole represents user's role for authorization / Représente le rôle utilisateur pour l'autorisation
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"       // Manages forms, questions and users / Gère formulaires, questions et utilisateurs
	RoleClient      UserRole = "CLIENT"      // Answers forms / Répond aux formulaires
	RoleFournisseur UserRole = "FOURNISSEUR" // Comments client answers / Commente les réponses clients
)

// IsValid checks if role is valid / Vérifie si le rôle est valide
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleClient || r == RoleFournisseur
}

// String returns role as string / Retourne le rôle en string
func (r UserRole) String() string {
	return string(r)
}

// ParseUserType maps a registration user type to a role, CLIENT by default / Convertit le type d'inscription en rôle, CLIENT par défaut
func ParseUserType(userType string) UserRole {
	role := UserRole(strings.ToUpper(strings.TrimSpace(userType)))
	if role.IsValid() {
		return role
	}
	return RoleClient
}

// User represents domain user entity / Représente l'entité utilisateur du domaine
type User struct {
	BaseModel
	ID                  int64
	FirstName           string
	LastName            string
	Email               string
	Password            string // Hashed password / Mot de passe haché
	Role                UserRole
	Enabled             bool
	ResetCode           *string
	ResetCodeExpiresAt  *time.Time
	FailedLoginAttempts int        // Failed login counter / Compteur d'échecs de connexion
	LockedUntil         *time.Time // Account lock expiry / Expiration du verrouillage du compte
}

// IsLocked checks if account is locked / Vérifie si le compte est verrouillé
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// HasRole checks exact role match / Vérifie la correspondance exacte du rôle
func (u *User) HasRole(role UserRole) bool {
	return u.Role == role
}

// IsAdmin checks admin privileges / Vérifie les privilèges admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasResetCode reports whether a reset code is pending / Indique si un code de réinitialisation est en attente
func (u *User) HasResetCode() bool {
	return u.ResetCode != nil && *u.ResetCode != "" && u.ResetCodeExpiresAt != nil
}

// ResetCodeExpired reports whether now is past the expiry; the expiry instant itself is still valid
// Indique si now dépasse l'expiration ; l'instant d'expiration reste valide
func (u *User) ResetCodeExpired(now time.Time) bool {
	if u.ResetCodeExpiresAt == nil {
		return true
	}
	return now.After(*u.ResetCodeExpiresAt)
}

// RefreshToken represents refresh token entity / Représente l'entité refresh token
type RefreshToken struct {
	Token     string // Hashed token value / Valeur du token hachée
	UserID    int64
	IssueAt   time.Time
	ExpiresAt time.Time
	IsRevoked bool
	IPHash    string // SHA-256 hash of client IP / Hash SHA-256 de l'IP client
	UAHash    string // SHA-256 hash of User-Agent / Hash SHA-256 du User-Agent
}

// IsTokenExpired checks if token expired / Vérifie si le token est expiré
func (rt *RefreshToken) IsTokenExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsTokenValid checks if token is valid / Vérifie si le token est valide
func (rt *RefreshToken) IsTokenValid() bool {
	return !rt.IsRevoked && !rt.IsTokenExpired()
}

package ports

import (
	"context"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
)

// UserReader reads user data / Lit les données utilisateur
type UserReader interface {
	// GetByID retrieves user by unique ID / Récupère l'utilisateur par ID unique
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves user by email / Récupère l'utilisateur par email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List retrieves all users ordered by ID / Récupère tous les utilisateurs triés par ID
	List(ctx context.Context) ([]*domain.User, error)

	// CountUsers returns total user count / Retourne le nombre total d'utilisateurs
	CountUsers(ctx context.Context) (int, error)
}

// UserWriter creates, updates and deletes users / Crée, modifie et supprime les utilisateurs
type UserWriter interface {
	// Create inserts new user / Insère un nouvel utilisateur
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// Update saves names, email, role and enabled flag / Enregistre noms, email, rôle et activation
	Update(ctx context.Context, user *domain.User) error

	// UpdatePassword updates password hash / Met à jour le hash du mot de passe
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error

	// Delete removes user and everything the user owns / Supprime l'utilisateur et tout ce qu'il possède
	Delete(ctx context.Context, id int64) error
}

// AccountSecurityRepository manages account security / Gère la sécurité des comptes
type AccountSecurityRepository interface {
	// IncrementFailedAttempts increments failed login counter / Incrémente le compteur d'échecs
	IncrementFailedAttempts(ctx context.Context, userID int64) error

	// ResetFailedAttempts resets failed attempt counter / Réinitialise le compteur d'échecs
	ResetFailedAttempts(ctx context.Context, userID int64) error

	// LockAccount locks account until timestamp / Verrouille le compte jusqu'à l'heure
	LockAccount(ctx context.Context, userID int64, until time.Time) error

	// WithTx returns repository with transaction context / Retourne le référentiel avec transaction
	WithTx(dbtx DBTX) AccountSecurityRepository
}

// PasswordResetRepository stores reset codes / Stocke les codes de réinitialisation
type PasswordResetRepository interface {
	// SetResetCode stores code and expiry, replacing any previous one / Stocke le code et l'expiration, remplace l'ancien
	SetResetCode(ctx context.Context, email, code string, expiresAt time.Time) error

	// ResetPasswordWithCode swaps the hash and clears the code if it still matches / Remplace le hash et efface le code s'il correspond encore
	ResetPasswordWithCode(ctx context.Context, userID int64, code, hashedPassword string) error
}

// UserRepository is composite interface for all user operations / Interface composite pour toutes les opérations utilisateur
type UserRepository interface {
	UserReader
	UserWriter
	AccountSecurityRepository
	PasswordResetRepository
}

// RefreshTokenStore manages refresh tokens / Gère les tokens de rafraîchissement
type RefreshTokenStore interface {
	// Save stores refresh token / Stocke le token de rafraîchissement
	Save(ctx context.Context, token *domain.RefreshToken) error
	// Get retrieves refresh token by value / Récupère le token par sa valeur
	Get(ctx context.Context, tokenString string) (*domain.RefreshToken, error)
	// Revoke marks token as revoked / Marque le token comme révoqué
	Revoke(ctx context.Context, tokenString string) error
	// RevokeAllForUser revokes all user tokens / Révoque tous les tokens de l'utilisateur
	RevokeAllForUser(ctx context.Context, userID int64) error
	// PurgeExpired removes expired tokens / Supprime les tokens expirés
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
	// WithTx returns store with transaction / Retourne le store avec transaction
	WithTx(dbtx DBTX) RefreshTokenStore
}

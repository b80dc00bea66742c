package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
)

// UserService handles user management operations / Gère les opérations de gestion des utilisateurs
type UserService struct {
	reader       ports.UserReader
	writer       ports.UserWriter
	refreshStore ports.RefreshTokenStore
	forms        ports.FormulaireCache // Deleting a user drops their forms
	conf         *config.Config
	metrics      UserMetricsRecorder
}

// UserMetricsRecorder records user metrics / Enregistre les métriques utilisateur
type UserMetricsRecorder interface {
	RecordRegistration()
}

// RegisterInput is a self-service sign-up / Inscription en libre-service
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	UserType        string
}

// UserInput is an admin-created account / Compte créé par un administrateur
type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	Enabled   *bool
}

// UserUpdate holds admin-editable fields; nil keeps the current value / Champs modifiables, nil conserve la valeur
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Role      *string
	Enabled   *bool
}

// ProfileUpdate is a self-service profile edit / Modification du profil par l'utilisateur
type ProfileUpdate struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Password  string // Empty keeps the current password
}

// DefaultAccount is a seeded login / Compte créé au démarrage
type DefaultAccount struct {
	Email    string
	Password string
	Role     domain.UserRole
}

// DefaultAccounts are ensured by seeding / Comptes garantis par le seeding
var DefaultAccounts = []DefaultAccount{
	{Email: "admin@admin.com", Password: "adminadmin", Role: domain.RoleAdmin},
	{Email: "client@client.com", Password: "clientclient", Role: domain.RoleClient},
	{Email: "fournisseur@fournisseur.com", Password: "fournisseurfournisseur", Role: domain.RoleFournisseur},
}

// NewUserService creates user management service instance / Crée une instance de service de gestion utilisateur
func NewUserService(
	repo ports.UserRepository,
	refreshStore ports.RefreshTokenStore,
	forms ports.FormulaireCache,
	conf *config.Config,
	metrics UserMetricsRecorder,
) *UserService {
	return &UserService{
		reader:       repo,
		writer:       repo,
		refreshStore: refreshStore,
		forms:        forms,
		conf:         conf,
		metrics:      metrics,
	}
}

func (s *UserService) hash(ctx context.Context, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.conf.Security.BcryptCost)
	if err != nil {
		return "", internal(ctx, "failed to hash password", err)
	}
	return string(hashed), nil
}

// create validates, hashes and inserts / Valide, hache et insère
func (s *UserService) create(ctx context.Context, u *domain.User, password string) (*domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if !isValidEmail(u.Email) {
		return nil, domain.NewValidationError("Invalid email format")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := s.hash(ctx, password)
	if err != nil {
		return nil, err
	}
	u.Password = hashed
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)

	created, err := s.writer.Create(ctx, u)
	if err != nil {
		if errors.Is(err, repository.ErrDup) {
			return nil, ErrEmailTaken
		}
		return nil, internal(ctx, "failed to create user", err)
	}
	return created, nil
}

// Register creates a new enabled account / Crée un nouveau compte actif
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordsMismatch
	}

	user, err := s.create(ctx, &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      domain.ParseUserType(in.UserType),
		Enabled:   true,
	}, in.Password)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRegistration()
	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// CreateUser creates an account on behalf of an admin / Crée un compte pour un administrateur
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*domain.User, error) {
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	return s.create(ctx, &domain.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      domain.ParseUserType(in.Role),
		Enabled:   enabled,
	}, in.Password)
}

// GetUser retrieves a user by their ID / Récupère un utilisateur par son ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.reader.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "User", id)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email / Récupère un utilisateur par email
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	user, err := s.reader.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, domain.NewError(domain.ErrNotFound, "User not found with email: %s", email)
		}
		return nil, internal(ctx, "failed to load user", err)
	}
	return user, nil
}

// ListUsers retrieves all users / Récupère tous les utilisateurs
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.reader.List(ctx)
	if err != nil {
		return nil, internal(ctx, "failed to list users", err)
	}
	return users, nil
}

// checkEmailFree fails when email belongs to another user / Échoue si l'email appartient à un autre utilisateur
func (s *UserService) checkEmailFree(ctx context.Context, email string, selfID int64) error {
	other, err := s.reader.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNoRecord):
		return nil
	case err != nil:
		return internal(ctx, "failed to check email", err)
	case other.ID != selfID:
		return ErrEmailTaken
	}
	return nil
}

// UpdateUser edits names, email, role and enabled flag / Modifie noms, email, rôle et activation
func (s *UserService) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if !isValidEmail(email) {
			return nil, domain.NewValidationError("Invalid email format")
		}
		if err := s.checkEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Role != nil {
		role := domain.UserRole(strings.ToUpper(strings.TrimSpace(*in.Role)))
		if !role.IsValid() {
			return nil, domain.NewValidationError("Invalid role: %s", *in.Role)
		}
		user.Role = role
	}
	if in.Enabled != nil {
		user.Enabled = *in.Enabled
	}

	if err := s.writer.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDup) {
			return nil, ErrEmailTaken
		}
		return nil, internal(ctx, "failed to update user", err, "user_id", id)
	}
	return s.GetUser(ctx, id)
}

// SetPassword replaces a user's password on behalf of an admin / Remplace le mot de passe pour un administrateur
func (s *UserService) SetPassword(ctx context.Context, id int64, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordsMismatch
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	hashed, err := s.hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := s.writer.UpdatePassword(ctx, id, hashed); err != nil {
		return internal(ctx, "failed to update password", err, "user_id", id)
	}
	if err := s.refreshStore.RevokeAllForUser(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to revoke refresh tokens after password change", "user_id", id, "err", err)
	}
	return nil
}

// DeleteUser removes a user and everything they own / Supprime un utilisateur et tout ce qu'il possède
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	if err := s.writer.Delete(ctx, id); err != nil {
		return internal(ctx, "failed to delete user", err, "user_id", id)
	}
	s.forms.Invalidate()

	slog.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

// GetProfile returns the profile for email if the caller may see it / Retourne le profil si l'appelant y a droit
func (s *UserService) GetProfile(ctx context.Context, caller domain.Principal, email string) (*domain.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !caller.CanActOn(user.ID, user.Email) {
		return nil, domain.NewError(domain.ErrForbidden, "You can only access your own profile")
	}
	return user, nil
}

// UpdateProfile edits the caller's own profile / Modifie le profil de l'appelant
func (s *UserService) UpdateProfile(ctx context.Context, caller domain.Principal, in ProfileUpdate) (*domain.User, error) {
	if in.ID == 0 {
		return nil, domain.NewValidationError("User id is required")
	}
	if !caller.CanActOn(in.ID, "") {
		return nil, domain.NewError(domain.ErrForbidden, "You can only update your own profile")
	}

	firstName, lastName, email := in.FirstName, in.LastName, in.Email
	if _, err := s.UpdateUser(ctx, in.ID, UserUpdate{FirstName: &firstName, LastName: &lastName, Email: &email}); err != nil {
		return nil, err
	}

	if in.Password != "" {
		if err := validatePassword(in.Password); err != nil {
			return nil, err
		}
		hashed, err := s.hash(ctx, in.Password)
		if err != nil {
			return nil, err
		}
		if err := s.writer.UpdatePassword(ctx, in.ID, hashed); err != nil {
			return nil, internal(ctx, "failed to update password", err, "user_id", in.ID)
		}
	}
	return s.GetUser(ctx, in.ID)
}

// SeedDefaults ensures the default accounts exist / Garantit l'existence des comptes par défaut
func (s *UserService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, acc := range DefaultAccounts {
		_, err := s.reader.GetByEmail(ctx, acc.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNoRecord) {
			return created, internal(ctx, "failed to check default account", err, "email", acc.Email)
		}

		hashed, err := s.hash(ctx, acc.Password)
		if err != nil {
			return created, err
		}
		_, err = s.writer.Create(ctx, &domain.User{
			FirstName: strings.ToLower(string(acc.Role)),
			LastName:  "default",
			Email:     acc.Email,
			Password:  hashed,
			Role:      acc.Role,
			Enabled:   true,
		})
		if err != nil && !errors.Is(err, repository.ErrDup) {
			return created, internal(ctx, "failed to seed default account", err, "email", acc.Email)
		}
		if err == nil {
			created++
			slog.InfoContext(ctx, "default account created", "email", acc.Email, "role", acc.Role)
		}
	}
	return created, nil
}

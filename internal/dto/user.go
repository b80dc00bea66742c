package dto

import "github.com/Walehamdi1/QNA/internal/domain"

// RegisterRequest is the self-registration payload / Charge utile d'inscription
type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	UserType        string `json:"userType"` // ADMIN, FOURNISSEUR, anything else CLIENT
}

// RegisterResponse confirms an account creation / Confirme la création du compte
type RegisterResponse struct {
	MessageResponse string `json:"messageResponse"`
	EmailResponse   string `json:"emailResponse"`
}

// AuthenticationRequest is the login payload / Charge utile de connexion
type AuthenticationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthenticationResponse carries the issued tokens / Contient les tokens émis
type AuthenticationResponse struct {
	Token           string `json:"token"`
	RefreshToken    string `json:"refreshToken"`
	MessageResponse string `json:"messageResponse"`
	Role            string `json:"role"`
	Email           string `json:"email"`
}

// RefreshRequest carries a refresh token / Contient un refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned on refresh / Réponse du rafraîchissement
type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// ProfileResponse is the public view of an account / Vue publique d'un compte
type ProfileResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// ProfileUpdateRequest edits the caller's profile / Modifie le profil de l'appelant
type ProfileUpdateRequest struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
}

// UserResponse is the admin view of an account / Vue administrateur d'un compte
type UserResponse struct {
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Enabled   bool   `json:"enabled"`
}

// UserRequest creates or updates an account as admin / Crée ou modifie un compte (admin)
type UserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password,omitempty"`
	Role      *string `json:"role"`
	Enabled   *bool   `json:"enabled"`
}

// AdminSetPasswordRequest replaces a user's password / Remplace le mot de passe d'un utilisateur
type AdminSetPasswordRequest struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ForgotPasswordRequest starts a reset / Démarre une réinitialisation
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// VerifyResetCodeRequest checks a code without consuming it / Vérifie un code sans le consommer
type VerifyResetCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequest completes a reset / Termine une réinitialisation
type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// VerifyResponse is the verify endpoint result / Résultat de la vérification
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// MessageResponse is a plain confirmation / Simple confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// ToProfile converts domain.User to ProfileResponse / Convertit domain.User en ProfileResponse
func ToProfile(user *domain.User) *ProfileResponse {
	return &ProfileResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role.String(),
	}
}

// ToUser converts domain.User to UserResponse / Convertit domain.User en UserResponse
func ToUser(user *domain.User) *UserResponse {
	return &UserResponse{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role.String(),
		Enabled:   user.Enabled,
	}
}

// ToUsers converts a slice; never nil / Convertit une liste, jamais nil
func ToUsers(users []*domain.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUser(u))
	}
	return out
}

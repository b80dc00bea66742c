package web

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/dto"
	"github.com/Walehamdi1/QNA/internal/service"
)

const forgotPasswordMessage = "If the email exists, a reset code has been sent"

// sha256hex computes SHA-256 hash of string / Calcule le hash SHA-256 d'une chaîne
func sha256hex(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// clientHashes binds refresh tokens to the caller's IP and User-Agent
func (h *Handler) clientHashes(r *http.Request) (ipHash, uaHash string) {
	ip := getIPWithTrustedProxies(r, h.container.Config.Security.TrustedProxies)
	return sha256hex(ip), sha256hex(r.Header.Get("User-Agent"))
}

// Register handles new user registration / Gère l'inscription des utilisateurs
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.container.UserSvc.Register(r.Context(), service.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		UserType:        req.UserType,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	jsonResponse(w, dto.RegisterResponse{
		MessageResponse: "Account created successfully",
		EmailResponse:   user.Email,
	})
}

// Authenticate handles user login / Gère la connexion de l'utilisateur
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthenticationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ipHash, uaHash := h.clientHashes(r)
	result, err := h.container.AuthSvc.Login(r.Context(), req.Email, req.Password, ipHash, uaHash)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	jsonResponse(w, dto.AuthenticationResponse{
		Token:           result.Tokens.AccessToken,
		RefreshToken:    result.Tokens.RefreshToken,
		MessageResponse: "You have been successfully authenticated!",
		Role:            result.User.Role.String(),
		Email:           result.User.Email,
	})
}

// RefreshToken rotates a refresh token / Fait tourner le refresh token
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		ErrorResponse(w, "refreshToken is required", http.StatusBadRequest)
		return
	}

	ipHash, uaHash := h.clientHashes(r)
	tokens, err := h.container.AuthSvc.RefreshToken(r.Context(), req.RefreshToken, ipHash, uaHash)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	jsonResponse(w, dto.TokenResponse{Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

// Logout revokes the given refresh token / Révoque le refresh token fourni
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.container.AuthSvc.Logout(r.Context(), req.RefreshToken); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.MessageResponse{Message: "Logged out"})
}

// ForgotPassword sends a reset code; the answer never reveals if the email exists
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Only malformed input is reported / Seule une entrée invalide est signalée
	if err := h.container.PasswordSvc.RequestReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			WriteServiceError(w, r, err)
			return
		}
		if !errors.Is(err, domain.ErrNotFound) {
			slog.WarnContext(r.Context(), "reset code request failed", "err", err)
		}
	}
	jsonResponse(w, dto.MessageResponse{Message: forgotPasswordMessage})
}

// VerifyResetCode checks a code without consuming it / Vérifie un code sans le consommer
func (h *Handler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyResetCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.container.PasswordSvc.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			WriteServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.VerifyResponse{Valid: false, Error: err.Error()})
		return
	}
	jsonResponse(w, dto.VerifyResponse{Valid: true})
}

// ResetPassword consumes the code and sets the new password / Consomme le code et définit le mot de passe
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.container.PasswordSvc.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword, req.ConfirmPassword); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.MessageResponse{Message: "Password has been reset"})
}

// GetProfile returns a profile to its owner or an admin / Retourne un profil à son propriétaire ou à un admin
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := PrincipalFromContext(r.Context())

	user, err := h.container.UserSvc.GetProfile(r.Context(), caller, r.PathValue("email"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToProfile(user))
}

// UpdateProfile edits the caller's own profile / Modifie le profil de l'appelant
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := PrincipalFromContext(r.Context())

	var req dto.ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.container.UserSvc.UpdateProfile(r.Context(), caller, service.ProfileUpdate{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToProfile(user))
}

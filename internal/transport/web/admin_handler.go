package web

import (
	"net/http"

	"github.com/Walehamdi1/QNA/internal/dto"
	"github.com/Walehamdi1/QNA/internal/service"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListUsers returns every account / Retourne tous les comptes
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.container.UserSvc.ListUsers(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToUsers(users))
}

// CreateUser adds an account with the given role, CLIENT by default / Ajoute un compte, CLIENT par défaut
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.container.UserSvc.CreateUser(r.Context(), service.UserInput{
		FirstName: deref(req.FirstName),
		LastName:  deref(req.LastName),
		Email:     deref(req.Email),
		Password:  deref(req.Password),
		Role:      deref(req.Role),
		Enabled:   req.Enabled,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToUser(user))
}

// GetUserByID returns one account / Retourne un compte
func (h *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.container.UserSvc.GetUser(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToUser(user))
}

func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.container.UserSvc.GetUserByEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToUser(user))
}

// UpdateUser changes names, email, role or enabled; absent fields are kept
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.container.UserSvc.UpdateUser(r.Context(), id, service.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      req.Role,
		Enabled:   req.Enabled,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToUser(user))
}

// DeleteUser removes an account and everything it owns / Supprime un compte et ses données
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.container.UserSvc.DeleteUser(r.Context(), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetUserPassword replaces a user's password / Remplace le mot de passe d'un utilisateur
func (h *Handler) SetUserPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.AdminSetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.container.UserSvc.SetPassword(r.Context(), id, req.NewPassword, req.ConfirmPassword); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.MessageResponse{Message: "Password updated"})
}

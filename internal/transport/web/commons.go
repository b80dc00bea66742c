package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Walehamdi1/QNA/internal/app"
	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/service"
)

const maxBodyBytes = 1 << 20

// Handler gives HTTP handlers access to the container's services.
type Handler struct {
	container *app.Container
}

// NewHandler creates a Handler bound to container.
func NewHandler(container *app.Container) *Handler {
	return &Handler{container: container}
}

// ErrorResponse writes {"error": message} with code / Écrit {"error": message} avec le code
func ErrorResponse(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]any{"error": message})
}

// jsonResponse writes data with 200 OK / Écrit data avec 200 OK
func jsonResponse(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode response", "err", err)
	}
}

// statusFor maps an error kind to an HTTP status / Associe un type d'erreur à un statut HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrExpired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError maps a service error to its status and message / Convertit une erreur de service en réponse HTTP
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		// Services already log what they wrap in ErrInternal
		if !errors.Is(err, service.ErrInternal) {
			slog.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "err", err)
		}
		ErrorResponse(w, "Internal server error", code)
		return
	}
	ErrorResponse(w, err.Error(), code)
}

// decodeJSON reads a size-limited JSON body into dst; false means a response was written
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID parses a positive int64 path value / Analyse un identifiant de chemin positif
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive int64 query value
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, domain.NewValidationError("Invalid %s", name)
	}
	return &id, nil
}

// queryInt parses an optional int query value, def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("Invalid %s", name)
	}
	return n, nil
}

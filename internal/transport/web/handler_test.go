package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Walehamdi1/QNA/internal/app"
	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/dto"
	"github.com/Walehamdi1/QNA/internal/mocks"
)

const (
	adminEmail       = "admin@admin.com"
	clientEmail      = "client@client.com"
	fournisseurEmail = "fournisseur@fournisseur.com"
)

type testServer struct {
	t         *testing.T
	handler   http.Handler
	container *app.Container
	mail      *mocks.MockEmailSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second, FrontendURL: "http://localhost:3000"},
		Database: config.DatabaseConfig{
			Type: "sqlite",
			DSN:  filepath.Join(dir, "qna.db") + "?_pragma=foreign_keys(1)",
		},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			Issuer:               "qna-test",
			AccessTokenDuration:  time.Minute,
			RefreshTokenDuration: time.Hour,
		},
		Security: config.SecurityConfig{
			MaxFailedAttempts: 5,
			LockoutDuration:   time.Minute,
			BcryptCost:        4,
		},
		PasswordReset: config.PasswordResetConfig{CodeTTL: 15 * time.Minute},
		SMTP:          config.SMTPConfig{Host: "localhost", Port: 1025, From: "test@example.com"},
		Cache:         config.CacheConfig{TTL: time.Minute},
		Seed:          config.SeedConfig{Enabled: true},
	}

	mail := mocks.NewMockEmailSender()
	container, err := app.NewContainer(cfg, app.WithEmailSender(mail))
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	return &testServer{
		t:         t,
		handler:   NewMux(NewHandler(container), cfg, container),
		container: container,
		mail:      mail,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/user/auth", "", dto.AuthenticationRequest{Email: email, Password: password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.AuthenticationResponse
	decode(s.t, rec, &resp)
	require.NotEmpty(s.t, resp.Token)
	return resp.Token
}

func (s *testServer) userID(email string) int64 {
	s.t.Helper()
	u, err := s.container.UserSvc.GetUserByEmail(context.Background(), email)
	require.NoError(s.t, err)
	return u.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decode(t, rec, &body)
	msg, _ := body["error"].(string)
	return msg
}

func TestHealthReadyAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	rec = s.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRegisterAndAuthenticate(t *testing.T) {
	s := newTestServer(t)

	reg := dto.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Password: "secret123", ConfirmPassword: "secret123", UserType: "FOURNISSEUR",
	}

	rec := s.do(http.MethodPost, "/user/register", "", reg)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created dto.RegisterResponse
	decode(t, rec, &created)
	assert.Equal(t, "ada@example.com", created.EmailResponse)

	rec = s.do(http.MethodPost, "/user/register", "", reg)
	assert.Equal(t, http.StatusConflict, rec.Code)

	bad := reg
	bad.Email, bad.ConfirmPassword = "other@example.com", "different"
	rec = s.do(http.MethodPost, "/user/register", "", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/user/auth", "", dto.AuthenticationRequest{Email: "ada@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var auth dto.AuthenticationResponse
	decode(t, rec, &auth)
	assert.Equal(t, "FOURNISSEUR", auth.Role)
	assert.NotEmpty(t, auth.RefreshToken)

	rec = s.do(http.MethodPost, "/user/auth", "", dto.AuthenticationRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/user/refresh", "", dto.RefreshRequest{RefreshToken: auth.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rotated dto.TokenResponse
	decode(t, rec, &rotated)

	rec = s.do(http.MethodPost, "/user/logout", "", dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/user/refresh", "", dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutePermissions(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, "adminadmin")
	client := s.login(clientEmail, "clientclient")
	supplier := s.login(fournisseurEmail, "fournisseurfournisseur")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/formulaires", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/formulaires", "not-a-jwt", http.StatusUnauthorized},
		{"client reads forms", http.MethodGet, "/api/formulaires", client, http.StatusOK},
		{"client cannot author", http.MethodPost, "/api/questions", client, http.StatusForbidden},
		{"supplier cannot submit", http.MethodPost, "/api/formulaires/1/submit", supplier, http.StatusForbidden},
		{"client cannot review", http.MethodPost, "/api/reponse-fournisseur/upsert", client, http.StatusForbidden},
		{"supplier reads answers", http.MethodGet, "/api/reponse-client", supplier, http.StatusOK},
		{"client cannot list users", http.MethodGet, "/user", client, http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/user", admin, http.StatusOK},
		{"unknown form", http.MethodGet, "/api/formulaires/999", admin, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/formulaires/abc", admin, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestProfileAccess(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, "adminadmin")
	client := s.login(clientEmail, "clientclient")

	rec := s.do(http.MethodGet, "/user/profile/"+clientEmail, client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile dto.ProfileResponse
	decode(t, rec, &profile)
	assert.Equal(t, "CLIENT", profile.Role)

	rec = s.do(http.MethodGet, "/user/profile/"+adminEmail, client, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/user/profile/"+clientEmail, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/user/profile", client, dto.ProfileUpdateRequest{
		ID: profile.ID, FirstName: "Cli", LastName: "Ent", Email: adminEmail,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPut, "/user/profile", client, dto.ProfileUpdateRequest{
		ID: profile.ID, FirstName: "Cli", LastName: "Ent", Email: clientEmail,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &profile)
	assert.Equal(t, "Cli", profile.FirstName)
}

func TestAdminUserManagement(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, "adminadmin")

	email, password := "new@example.com", "password1"
	rec := s.do(http.MethodPost, "/user", admin, dto.UserRequest{Email: &email, Password: &password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user dto.UserResponse
	decode(t, rec, &user)
	assert.Equal(t, "CLIENT", user.Role)

	role := "FOURNISSEUR"
	rec = s.do(http.MethodPut, fmt.Sprintf("/user/%d", user.UserID), admin, dto.UserRequest{Role: &role})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &user)
	assert.Equal(t, "FOURNISSEUR", user.Role)

	rec = s.do(http.MethodPut, fmt.Sprintf("/user/%d/password", user.UserID), admin,
		dto.AdminSetPasswordRequest{NewPassword: "changed1", ConfirmPassword: "changed2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/user/%d/password", user.UserID), admin,
		dto.AdminSetPasswordRequest{NewPassword: "changed1", ConfirmPassword: "changed1"})
	require.Equal(t, http.StatusOK, rec.Code)
	s.login(email, "changed1")

	rec = s.do(http.MethodGet, "/user/by-email/"+email, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/user/%d", user.UserID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/user/by-id/%d", user.UserID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormulairePostRouting(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, "adminadmin")
	client := s.login(clientEmail, "clientclient")
	createPath := fmt.Sprintf("/api/formulaires/user/%d", s.userID(adminEmail))

	rec := s.do(http.MethodPost, createPath, client, dto.FormulaireRequest{Titre: "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "create keeps forms:write")

	rec = s.do(http.MethodPost, createPath, admin, dto.FormulaireRequest{Titre: "Routing"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var form dto.FormulaireListDTO
	decode(t, rec, &form)

	submitPath := fmt.Sprintf("/api/formulaires/%d/submit", form.ID)
	rec = s.do(http.MethodPost, submitPath, s.login(fournisseurEmail, "fournisseurfournisseur"), dto.SubmissionRequest{})
	assert.Equal(t, http.StatusForbidden, rec.Code, "submit keeps responses:submit")

	rec = s.do(http.MethodPost, submitPath, client, dto.SubmissionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "reaches the submit handler")

	rec = s.do(http.MethodPost, "/api/formulaires/user/submit", admin, dto.FormulaireRequest{Titre: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, fmt.Sprintf("/api/formulaires/%d/archive", form.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

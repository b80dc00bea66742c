package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
)

//go:embed templates/password_reset_email.html
var passwordResetTemplateFS embed.FS

// PasswordMetricsRecorder records password reset metrics / Enregistre les métriques de réinitialisation
type PasswordMetricsRecorder interface {
	RecordResetCodeIssued()
	RecordPasswordReset(result string)
}

// PasswordService handles password reset by emailed code / Gère la réinitialisation par code envoyé par email
type PasswordService struct {
	userReader   ports.UserReader
	passwordRepo ports.PasswordResetRepository
	refreshStore ports.RefreshTokenStore
	emailSender  ports.EmailSender
	conf         *config.Config
	template     *template.Template
	metrics      PasswordMetricsRecorder
	now          func() time.Time
}

// NewPasswordService creates a new password management service instance.
// Returns error if template parsing fails / Retourne une erreur si le parsing du template échoue
func NewPasswordService(
	repo ports.UserRepository,
	refreshStore ports.RefreshTokenStore,
	emailSender ports.EmailSender,
	conf *config.Config,
	metrics PasswordMetricsRecorder,
) (*PasswordService, error) {
	tmpl, err := template.ParseFS(passwordResetTemplateFS, "templates/password_reset_email.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse password reset template: %w", err)
	}

	return &PasswordService{
		userReader:   repo,
		passwordRepo: repo,
		refreshStore: refreshStore,
		emailSender:  emailSender,
		conf:         conf,
		template:     tmpl,
		metrics:      metrics,
		now:          time.Now,
	}, nil
}

// SetClock overrides the time source / Remplace la source de temps
func (s *PasswordService) SetClock(now func() time.Time) {
	s.now = now
}

// RequestReset issues a fresh code and mails it / Émet un nouveau code et l'envoie par email
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return domain.NewValidationError("Invalid email format")
	}

	user, err := s.userReader.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return domain.NewError(domain.ErrNotFound, "User not found with email: %s", email)
		}
		return internal(ctx, "failed to load user", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return internal(ctx, "failed to generate reset code", err)
	}
	ttl := s.conf.PasswordReset.CodeTTL
	expiresAt := s.now().Add(ttl)

	// Overwrites any previous code / Écrase tout code précédent
	if err := s.passwordRepo.SetResetCode(ctx, user.Email, code, expiresAt); err != nil {
		return internal(ctx, "failed to store reset code", err, "user_id", user.ID)
	}

	body, err := s.render(user.Email, code, ttl)
	if err != nil {
		return internal(ctx, "failed to render password reset email", err)
	}

	msg := ports.Email{
		To:      user.Email,
		Subject: "Code de réinitialisation du mot de passe",
		HTML:    body,
		Text:    fmt.Sprintf("Votre code de réinitialisation est : %s (valable %d minutes)", code, int(ttl.Minutes())),
	}
	if err := s.emailSender.Send(ctx, msg); err != nil {
		return internal(ctx, "failed to send reset code", err, "user_id", user.ID)
	}

	s.metrics.RecordResetCodeIssued()
	slog.InfoContext(ctx, "reset code issued", "user_id", user.ID, "expires_at", expiresAt)
	return nil
}

func (s *PasswordService) render(email, code string, ttl time.Duration) (string, error) {
	link := fmt.Sprintf("%s/reset-password?email=%s&code=%s",
		s.conf.Server.FrontendURL, url.QueryEscape(email), code)

	data := struct {
		Email    string
		Code     string
		Minutes  int
		ResetURL string
	}{email, code, int(ttl.Minutes()), link}

	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// checkCode loads the user and validates the pending code / Charge l'utilisateur et valide le code en attente
func (s *PasswordService) checkCode(ctx context.Context, email, code string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, ErrInvalidResetCode
	}

	user, err := s.userReader.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return nil, ErrInvalidResetCode
		}
		return nil, internal(ctx, "failed to load user", err)
	}

	if !user.HasResetCode() || subtle.ConstantTimeCompare([]byte(*user.ResetCode), []byte(code)) != 1 {
		return nil, ErrInvalidResetCode
	}
	if user.ResetCodeExpired(s.now()) {
		return nil, ErrResetCodeExpired
	}
	return user, nil
}

// VerifyCode checks a code without consuming it / Vérifie un code sans le consommer
func (s *PasswordService) VerifyCode(ctx context.Context, email, code string) error {
	_, err := s.checkCode(ctx, email, code)
	return err
}

// ResetPassword consumes the code and stores the new password / Consomme le code et enregistre le nouveau mot de passe
func (s *PasswordService) ResetPassword(ctx context.Context, email, code, newPassword, confirm string) error {
	if newPassword != confirm {
		return ErrPasswordsMismatch
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.checkCode(ctx, email, code)
	if err != nil {
		s.metrics.RecordPasswordReset("rejected")
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.conf.Security.BcryptCost)
	if err != nil {
		return internal(ctx, "failed to hash password", err)
	}

	// Lost race with another reset: the code is gone / Course perdue : le code a déjà été consommé
	if err := s.passwordRepo.ResetPasswordWithCode(ctx, user.ID, code, string(hashed)); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			s.metrics.RecordPasswordReset("rejected")
			return ErrInvalidResetCode
		}
		return internal(ctx, "failed to reset password", err, "user_id", user.ID)
	}

	if err := s.refreshStore.RevokeAllForUser(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to revoke refresh tokens after password reset", "user_id", user.ID, "err", err)
	}

	s.metrics.RecordPasswordReset("success")
	slog.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

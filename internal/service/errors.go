package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
)

// Common service errors / Erreurs communes des services
var (
	ErrInvalidCredentials = domain.NewError(domain.ErrUnauthorized, "Invalid email or password")
	ErrAccountDisabled    = domain.NewError(domain.ErrUnauthorized, "Account is disabled")
	ErrNoPrincipal        = domain.NewError(domain.ErrUnauthorized, "Authentication required")
	ErrInvalidToken       = domain.NewError(domain.ErrUnauthorized, "Invalid refresh token")
	ErrInvalidResetCode   = domain.NewError(domain.ErrValidation, "Invalid code or email")
	ErrResetCodeExpired   = domain.NewError(domain.ErrExpired, "Code expired, please request a new one")
	ErrPasswordsMismatch  = domain.NewError(domain.ErrValidation, "Passwords do not match")
	ErrEmailTaken         = domain.NewError(domain.ErrConflict, "Email already in use")
	ErrInternal           = errors.New("internal server error")
)

// translate maps repository errors to domain kinds / Convertit les erreurs repository en types domaine
func translate(err error, entity string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNoRecord):
		return domain.NewNotFoundError(entity, id)
	case errors.Is(err, repository.ErrDup):
		return domain.NewError(domain.ErrConflict, "%s already exists", entity)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return domain.NewValidationError("%s references a missing record", entity)
	default:
		return err
	}
}

// internal logs err and hides it behind ErrInternal / Journalise err et la masque derrière ErrInternal
func internal(ctx context.Context, msg string, err error, attrs ...any) error {
	slog.ErrorContext(ctx, msg, append(attrs, "err", err)...)
	return fmt.Errorf("%w: %s", ErrInternal, msg)
}

// isKind reports whether err already carries a domain kind / Indique si err porte déjà un type domaine
func isKind(err error) bool {
	for _, kind := range []error{
		domain.ErrNotFound, domain.ErrConflict, domain.ErrValidation,
		domain.ErrUnauthorized, domain.ErrForbidden, domain.ErrExpired,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// inTx runs fn in one transaction, rolling back on error / Exécute fn dans une transaction, annulée en cas d'erreur
func inTx(ctx context.Context, db ports.TxBeginner, fn func(tx ports.DBTX) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// BatchItemError reports which batch item failed / Indique quel élément du lot a échoué
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Err.Error())
}

func (e *BatchItemError) Unwrap() error { return e.Err }

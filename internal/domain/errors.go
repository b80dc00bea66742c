package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds, matched with errors.Is at the transport boundary / Types d'erreur, testés avec errors.Is côté transport
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrExpired      = errors.New("expired")
)

// ValidationError carries a user-facing message / Porte un message destiné à l'utilisateur
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError / Construit une ValidationError
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError names the missing entity / Nomme l'entité absente
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with ID: %v", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError builds a NotFoundError / Construit une NotFoundError
func NewNotFoundError(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// MissingQuestionsError lists question IDs absent from storage / Liste les IDs de questions absents
type MissingQuestionsError struct {
	IDs []int64
}

func (e *MissingQuestionsError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = fmt.Sprint(id)
	}
	return "Some question IDs do not exist: [" + strings.Join(parts, ", ") + "]"
}

func (e *MissingQuestionsError) Unwrap() error { return ErrValidation }

// KindError attaches a user-facing message to an error kind / Associe un message à un type d'erreur
type KindError struct {
	Kind    error
	Message string
}

func (e *KindError) Error() string { return e.Message }

func (e *KindError) Unwrap() error { return e.Kind }

// NewError builds a KindError / Construit une KindError
func NewError(kind error, format string, args ...any) error {
	return &KindError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
)

// FormulaireService manages forms / Gère les formulaires
type FormulaireService struct {
	forms     ports.FormulaireRepository
	questions ports.QuestionReader
	users     ports.UserReader
	cache     ports.FormulaireCache
	now       func() time.Time
}

// NewFormulaireService creates form service / Crée le service des formulaires
func NewFormulaireService(
	forms ports.FormulaireRepository,
	questions ports.QuestionReader,
	users ports.UserReader,
	cache ports.FormulaireCache,
) *FormulaireService {
	return &FormulaireService{
		forms:     forms,
		questions: questions,
		users:     users,
		cache:     cache,
		now:       time.Now,
	}
}

// List returns forms newest first / Retourne les formulaires du plus récent au plus ancien
func (s *FormulaireService) List(ctx context.Context) ([]*domain.Formulaire, error) {
	forms, err := s.cache.List(ctx, func(ctx context.Context) ([]*domain.Formulaire, error) {
		return s.forms.List(ctx)
	})
	if err != nil {
		return nil, internal(ctx, "failed to list formulaires", err)
	}
	return forms, nil
}

// Get returns one form / Retourne un formulaire
func (s *FormulaireService) Get(ctx context.Context, id int64) (*domain.Formulaire, error) {
	f, err := s.forms.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, err, id)
	}
	return f, nil
}

// GetDetail returns a form with its questions in id order / Retourne un formulaire avec ses questions
func (s *FormulaireService) GetDetail(ctx context.Context, id int64) (*domain.FormulaireDetail, error) {
	detail, err := s.cache.Detail(ctx, id, func(ctx context.Context) (*domain.FormulaireDetail, error) {
		f, err := s.forms.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		qs, err := s.questions.ListByFormulaire(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.FormulaireDetail{Formulaire: *f, Questions: qs}, nil
	})
	if err != nil {
		return nil, s.fail(ctx, err, id)
	}
	return detail, nil
}

// Create adds a form owned by ownerUserID / Ajoute un formulaire appartenant à ownerUserID
func (s *FormulaireService) Create(ctx context.Context, ownerUserID int64, titre string) (*domain.Formulaire, error) {
	titre = strings.TrimSpace(titre)
	if titre == "" {
		return nil, domain.NewValidationError("Titre is required")
	}
	if err := s.requireUser(ctx, ownerUserID); err != nil {
		return nil, err
	}

	f, err := s.forms.Create(ctx, &domain.Formulaire{Titre: titre, DateCreation: s.now(), UserID: &ownerUserID})
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}
	s.cache.Invalidate()
	slog.InfoContext(ctx, "formulaire created", "formulaire_id", f.ID, "owner_id", ownerUserID)
	return f, nil
}

// Update changes titre and optionally the owner / Modifie le titre et éventuellement le propriétaire
func (s *FormulaireService) Update(ctx context.Context, id int64, titre string, ownerUserID *int64) (*domain.Formulaire, error) {
	titre = strings.TrimSpace(titre)
	if titre == "" {
		return nil, domain.NewValidationError("Titre is required")
	}

	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerUserID != nil {
		if err := s.requireUser(ctx, *ownerUserID); err != nil {
			return nil, err
		}
		f.UserID = ownerUserID
	}
	f.Titre = titre

	if err := s.forms.Update(ctx, f); err != nil {
		return nil, s.fail(ctx, err, id)
	}
	s.cache.Invalidate()
	return s.Get(ctx, id)
}

// Delete removes a form with its questions and their responses / Supprime un formulaire et ses dépendances
func (s *FormulaireService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.forms.Delete(ctx, id); err != nil {
		return s.fail(ctx, err, id)
	}
	s.cache.Invalidate()
	slog.InfoContext(ctx, "formulaire deleted", "formulaire_id", id)
	return nil
}

func (s *FormulaireService) requireUser(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return domain.NewNotFoundError("User", userID)
		}
		return internal(ctx, "failed to load user", err, "user_id", userID)
	}
	return nil
}

func (s *FormulaireService) fail(ctx context.Context, err error, id any) error {
	if err = translate(err, "Formulaire", id); isKind(err) {
		return err
	}
	return internal(ctx, "formulaire operation failed", err, "formulaire_id", id)
}

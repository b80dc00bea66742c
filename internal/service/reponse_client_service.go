package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
)

// SubmissionMetricsRecorder records client submissions / Enregistre les soumissions clients
type SubmissionMetricsRecorder interface {
	RecordSubmittedAnswers(n int)
}

// AnswerInput is one submitted answer / Une réponse soumise
type AnswerInput struct {
	QuestionID int64
	Valeur     string
}

// ReponseClientService manages client answers / Gère les réponses clients
type ReponseClientService struct {
	db        ports.TxBeginner
	forms     ports.FormulaireRepository
	questions ports.QuestionRepository
	users     ports.UserReader
	answers   ports.ReponseClientRepository
	metrics   SubmissionMetricsRecorder
	now       func() time.Time
}

// NewReponseClientService creates client answer service / Crée le service des réponses clients
func NewReponseClientService(
	db ports.TxBeginner,
	forms ports.FormulaireRepository,
	questions ports.QuestionRepository,
	users ports.UserReader,
	answers ports.ReponseClientRepository,
	metrics SubmissionMetricsRecorder,
) *ReponseClientService {
	return &ReponseClientService{
		db:        db,
		forms:     forms,
		questions: questions,
		users:     users,
		answers:   answers,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Submit stores every answer of userID for a form, or none / Enregistre toutes les réponses, ou aucune
func (s *ReponseClientService) Submit(ctx context.Context, userID, formulaireID int64, answers []AnswerInput) ([]*domain.ReponseClient, error) {
	if userID == 0 {
		return nil, ErrNoPrincipal
	}
	if len(answers) == 0 {
		return nil, domain.NewValidationError("No answers provided")
	}
	if _, err := s.forms.GetByID(ctx, formulaireID); err != nil {
		return nil, s.fail(ctx, translate(err, "Formulaire", formulaireID), formulaireID)
	}

	out := make([]*domain.ReponseClient, 0, len(answers))
	err := inTx(ctx, s.db, func(tx ports.DBTX) error {
		questions := s.questions.WithTx(tx)
		repo := s.answers.WithTx(tx)
		at := s.now()

		for _, a := range answers {
			ok, err := questions.ExistsInFormulaire(ctx, a.QuestionID, formulaireID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.NewValidationError("Question %d not in formulaire %d", a.QuestionID, formulaireID)
			}

			rc, err := s.upsert(ctx, repo, userID, a.QuestionID, a.Valeur, at)
			if err != nil {
				return err
			}
			out = append(out, rc)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	s.metrics.RecordSubmittedAnswers(len(out))
	slog.InfoContext(ctx, "answers submitted", "user_id", userID, "formulaire_id", formulaireID, "count", len(out))
	return out, nil
}

// upsert updates the (user, question) answer or creates it / Met à jour ou crée la réponse (utilisateur, question)
func (s *ReponseClientService) upsert(ctx context.Context, repo ports.ReponseClientRepository, userID, questionID int64, valeur string, at time.Time) (*domain.ReponseClient, error) {
	existing, err := repo.GetByUserAndQuestion(ctx, userID, questionID)
	switch {
	case err == nil:
		if err := repo.UpdateValeur(ctx, existing.ID, valeur, at); err != nil {
			return nil, err
		}
		existing.Valeur = valeur
		existing.DateSoumission = at
		return existing, nil
	case errors.Is(err, repository.ErrNoRecord):
		return repo.Create(ctx, &domain.ReponseClient{
			Valeur:         valeur,
			DateSoumission: at,
			QuestionID:     questionID,
			UserID:         userID,
		})
	default:
		return nil, err
	}
}

// MyResponses lists userID's answers for a form / Liste les réponses de userID pour un formulaire
func (s *ReponseClientService) MyResponses(ctx context.Context, userID, formulaireID int64) ([]*domain.ReponseClient, error) {
	if userID == 0 {
		return nil, ErrNoPrincipal
	}
	if _, err := s.forms.GetByID(ctx, formulaireID); err != nil {
		return nil, s.fail(ctx, translate(err, "Formulaire", formulaireID), formulaireID)
	}
	out, err := s.answers.ListByUserAndFormulaire(ctx, userID, formulaireID)
	if err != nil {
		return nil, internal(ctx, "failed to list responses", err, "user_id", userID)
	}
	if out == nil {
		out = []*domain.ReponseClient{}
	}
	return out, nil
}

// Create upserts one answer by (user, question) / Crée ou met à jour une réponse par (utilisateur, question)
func (s *ReponseClientService) Create(ctx context.Context, userID, questionID int64, valeur string) (*domain.ReponseClient, error) {
	if questionID == 0 {
		return nil, domain.NewValidationError("QuestionId is required")
	}
	if userID == 0 {
		return nil, domain.NewValidationError("UserId is required")
	}
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, s.fail(ctx, translate(err, "Question", questionID), questionID)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, s.fail(ctx, translate(err, "User", userID), userID)
	}

	rc, err := s.upsert(ctx, s.answers, userID, questionID, valeur, s.now())
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}
	return rc, nil
}

// Get returns one answer / Retourne une réponse
func (s *ReponseClientService) Get(ctx context.Context, id int64) (*domain.ReponseClient, error) {
	rc, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, err, id)
	}
	return rc, nil
}

// List returns every answer / Retourne toutes les réponses
func (s *ReponseClientService) List(ctx context.Context) ([]*domain.ReponseClient, error) {
	out, err := s.answers.List(ctx)
	if err != nil {
		return nil, internal(ctx, "failed to list responses", err)
	}
	return out, nil
}

// Update changes valeur only / Modifie uniquement la valeur
func (s *ReponseClientService) Update(ctx context.Context, id int64, valeur string) (*domain.ReponseClient, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.answers.UpdateValeur(ctx, id, valeur, s.now()); err != nil {
		return nil, s.fail(ctx, err, id)
	}
	return s.Get(ctx, id)
}

// Delete removes an answer and the supplier comments on it / Supprime une réponse et ses commentaires
func (s *ReponseClientService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.answers.Delete(ctx, id); err != nil {
		return s.fail(ctx, err, id)
	}
	return nil
}

func (s *ReponseClientService) fail(ctx context.Context, err error, id any) error {
	if err = translate(err, "ReponseClient", id); isKind(err) {
		return err
	}
	return internal(ctx, "reponse client operation failed", err, "id", id)
}

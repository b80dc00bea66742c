package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// QuestionMetricsRecorder records reconciliation metrics / Enregistre les métriques de réconciliation
type QuestionMetricsRecorder interface {
	RecordReconciliation(result string, detached, attached int64)
}

// QuestionInput carries question fields / Champs d'une question
type QuestionInput struct {
	Contenu      string
	Type         string
	FormulaireID *int64
}

// QuestionPage is one page of search results / Une page de résultats
type QuestionPage struct {
	Content       []*domain.Question
	Page          int
	Size          int
	TotalElements int
	TotalPages    int
}

// QuestionService manages questions and form membership / Gère les questions et leur appartenance
type QuestionService struct {
	db        ports.TxBeginner
	forms     ports.FormulaireRepository
	questions ports.QuestionRepository
	cache     ports.FormulaireCache
	metrics   QuestionMetricsRecorder
}

// NewQuestionService creates question service / Crée le service des questions
func NewQuestionService(
	db ports.TxBeginner,
	forms ports.FormulaireRepository,
	questions ports.QuestionRepository,
	cache ports.FormulaireCache,
	metrics QuestionMetricsRecorder,
) *QuestionService {
	return &QuestionService{db: db, forms: forms, questions: questions, cache: cache, metrics: metrics}
}

// ReplaceFormulaireQuestions makes the form's membership exactly ids / Rend l'appartenance du formulaire égale à ids
func (s *QuestionService) ReplaceFormulaireQuestions(ctx context.Context, formulaireID int64, ids []int64) error {
	if err := s.requireFormulaire(ctx, formulaireID); err != nil {
		return err
	}

	want := dedupe(ids)
	var detached, attached int64

	err := inTx(ctx, s.db, func(tx ports.DBTX) error {
		questions := s.questions.WithTx(tx)

		if len(want) == 0 {
			n, err := questions.DetachAll(ctx, formulaireID)
			detached = n
			return err
		}

		found, err := questions.FindByIDs(ctx, want)
		if err != nil {
			return err
		}
		if len(found) != len(want) {
			return &domain.MissingQuestionsError{IDs: missingIDs(want, found)}
		}

		if detached, err = questions.DetachExcept(ctx, formulaireID, want); err != nil {
			return err
		}
		attached, err = questions.Attach(ctx, formulaireID, want)
		return err
	})
	if err != nil {
		s.metrics.RecordReconciliation("failed", 0, 0)
		if isKind(err) {
			return err
		}
		return internal(ctx, "failed to reconcile formulaire questions", err, "formulaire_id", formulaireID)
	}

	s.cache.Invalidate()
	s.metrics.RecordReconciliation("success", detached, attached)
	slog.InfoContext(ctx, "formulaire questions reconciled",
		"formulaire_id", formulaireID, "detached", detached, "attached", attached, "members", len(want))
	return nil
}

// GetQuestionIDsOfFormulaire returns member ids ascending / Retourne les IDs membres triés
func (s *QuestionService) GetQuestionIDsOfFormulaire(ctx context.Context, formulaireID int64) ([]int64, error) {
	if err := s.requireFormulaire(ctx, formulaireID); err != nil {
		return nil, err
	}
	ids, err := s.questions.IDsByFormulaire(ctx, formulaireID)
	if err != nil {
		return nil, internal(ctx, "failed to list question ids", err, "formulaire_id", formulaireID)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// Create adds a question to an existing form / Ajoute une question à un formulaire existant
func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (*domain.Question, error) {
	contenu := strings.TrimSpace(in.Contenu)
	if contenu == "" {
		return nil, domain.NewValidationError("Contenu is required")
	}
	if in.FormulaireID == nil {
		return nil, domain.NewValidationError("FormulaireId is required")
	}
	if err := s.requireFormulaire(ctx, *in.FormulaireID); err != nil {
		return nil, err
	}

	q, err := s.questions.Create(ctx, &domain.Question{
		Contenu:      contenu,
		Type:         strings.TrimSpace(in.Type),
		FormulaireID: in.FormulaireID,
	})
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}
	s.cache.Invalidate()
	return q, nil
}

// Get returns one question / Retourne une question
func (s *QuestionService) Get(ctx context.Context, id int64) (*domain.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, err, id)
	}
	return q, nil
}

// List returns every question, newest first / Retourne toutes les questions
func (s *QuestionService) List(ctx context.Context) ([]*domain.Question, error) {
	qs, err := s.questions.List(ctx)
	if err != nil {
		return nil, internal(ctx, "failed to list questions", err)
	}
	return qs, nil
}

// Update edits contenu, type and optionally the form / Modifie contenu, type et éventuellement le formulaire
func (s *QuestionService) Update(ctx context.Context, id int64, in QuestionInput) (*domain.Question, error) {
	contenu := strings.TrimSpace(in.Contenu)
	if contenu == "" {
		return nil, domain.NewValidationError("Contenu is required")
	}

	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FormulaireID != nil {
		if err := s.requireFormulaire(ctx, *in.FormulaireID); err != nil {
			return nil, err
		}
		q.FormulaireID = in.FormulaireID
	}
	q.Contenu = contenu
	q.Type = strings.TrimSpace(in.Type)

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, s.fail(ctx, err, id)
	}
	s.cache.Invalidate()
	return s.Get(ctx, id)
}

// Delete removes a question and its responses / Supprime une question et ses réponses
func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return s.fail(ctx, err, id)
	}
	s.cache.Invalidate()
	return nil
}

// Search filters by type and content, paged by id desc / Filtre par type et contenu, paginé
func (s *QuestionService) Search(ctx context.Context, typ, query string, page, size int) (*QuestionPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	size = min(size, maxPageSize)

	content, total, err := s.questions.Search(ctx, domain.QuestionFilter{
		Type:   strings.TrimSpace(typ),
		Query:  strings.TrimSpace(query),
		Offset: page * size,
		Limit:  size,
	})
	if err != nil {
		return nil, internal(ctx, "failed to search questions", err)
	}
	if content == nil {
		content = []*domain.Question{}
	}

	return &QuestionPage{
		Content:       content,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
	}, nil
}

func (s *QuestionService) requireFormulaire(ctx context.Context, id int64) error {
	if _, err := s.forms.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			return domain.NewNotFoundError("Formulaire", id)
		}
		return internal(ctx, "failed to load formulaire", err, "formulaire_id", id)
	}
	return nil
}

func (s *QuestionService) fail(ctx context.Context, err error, id any) error {
	if err = translate(err, "Question", id); isKind(err) {
		return err
	}
	return internal(ctx, "question operation failed", err, "question_id", id)
}

// dedupe returns the distinct ids ascending / Retourne les IDs distincts triés
func dedupe(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// missingIDs lists the ids of want absent from found, ascending / Liste les IDs absents, triés
func missingIDs(want []int64, found []*domain.Question) []int64 {
	present := make(map[int64]struct{}, len(found))
	for _, q := range found {
		present[q.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

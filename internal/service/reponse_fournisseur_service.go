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

// Upsert outcomes / Résultats d'upsert
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
)

// SupplierMetricsRecorder records supplier upserts / Enregistre les upserts fournisseurs
type SupplierMetricsRecorder interface {
	RecordSupplierUpsert(outcome string)
}

// ReviewInput is one supplier comment on a client answer / Un commentaire fournisseur sur une réponse client
type ReviewInput struct {
	ReponseClientID int64
	Commentaire     string
}

// ReponseFournisseurService manages supplier comments / Gère les commentaires fournisseurs
type ReponseFournisseurService struct {
	db      ports.TxBeginner
	forms   ports.FormulaireRepository
	answers ports.ReponseClientRepository
	users   ports.UserReader
	reviews ports.ReponseFournisseurRepository
	metrics SupplierMetricsRecorder
	now     func() time.Time
}

// NewReponseFournisseurService creates supplier comment service / Crée le service des commentaires fournisseurs
func NewReponseFournisseurService(
	db ports.TxBeginner,
	forms ports.FormulaireRepository,
	answers ports.ReponseClientRepository,
	users ports.UserReader,
	reviews ports.ReponseFournisseurRepository,
	metrics SupplierMetricsRecorder,
) *ReponseFournisseurService {
	return &ReponseFournisseurService{
		db:      db,
		forms:   forms,
		answers: answers,
		users:   users,
		reviews: reviews,
		metrics: metrics,
		now:     time.Now,
	}
}

// UpsertOne creates or updates supplierID's comment on a client answer / Crée ou met à jour le commentaire du fournisseur
func (s *ReponseFournisseurService) UpsertOne(ctx context.Context, supplierID int64, in ReviewInput) (*domain.ReponseFournisseur, error) {
	if supplierID == 0 {
		return nil, ErrNoPrincipal
	}
	if in.ReponseClientID == 0 {
		return nil, domain.NewValidationError("ReponseClientId is required")
	}
	if _, err := s.answers.GetByID(ctx, in.ReponseClientID); err != nil {
		return nil, s.fail(ctx, translate(err, "ReponseClient", in.ReponseClientID), in.ReponseClientID)
	}

	rf, outcome, err := s.upsertTx(ctx, supplierID, in)
	// A concurrent insert won the race; the row now exists / Insertion concurrente : la ligne existe désormais
	if errors.Is(err, repository.ErrDup) {
		rf, outcome, err = s.upsertTx(ctx, supplierID, in)
	}
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}

	s.metrics.RecordSupplierUpsert(outcome)
	return rf, nil
}

func (s *ReponseFournisseurService) upsertTx(ctx context.Context, supplierID int64, in ReviewInput) (*domain.ReponseFournisseur, string, error) {
	var (
		rf      *domain.ReponseFournisseur
		outcome string
	)
	err := inTx(ctx, s.db, func(tx ports.DBTX) error {
		repo := s.reviews.WithTx(tx)
		at := s.now()

		existing, err := repo.GetByReponseClientAndUser(ctx, in.ReponseClientID, supplierID)
		switch {
		case err == nil:
			if err := repo.UpdateCommentaire(ctx, existing.ID, in.Commentaire, at); err != nil {
				return err
			}
			existing.Commentaire = in.Commentaire
			existing.DateReponse = at
			rf, outcome = existing, OutcomeUpdated
			return nil
		case errors.Is(err, repository.ErrNoRecord):
			rf, err = repo.Create(ctx, &domain.ReponseFournisseur{
				Commentaire:     in.Commentaire,
				DateReponse:     at,
				ReponseClientID: in.ReponseClientID,
				UserID:          supplierID,
			})
			outcome = OutcomeCreated
			return err
		default:
			return err
		}
	})
	return rf, outcome, err
}

// UpsertBatch applies UpsertOne per item; earlier items stay committed on failure / Applique UpsertOne par élément
func (s *ReponseFournisseurService) UpsertBatch(ctx context.Context, supplierID int64, items []ReviewInput) ([]*domain.ReponseFournisseur, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("No items provided")
	}

	out := make([]*domain.ReponseFournisseur, 0, len(items))
	for i, item := range items {
		rf, err := s.UpsertOne(ctx, supplierID, item)
		if err != nil {
			slog.WarnContext(ctx, "batch upsert item failed",
				"supplier_id", supplierID, "index", i, "committed", len(out), "err", err)
			return out, &BatchItemError{Index: i, Err: err}
		}
		out = append(out, rf)
	}
	return out, nil
}

// ListReviews joins a form's client answers with supplierID's comments / Joint les réponses clients aux commentaires du fournisseur
func (s *ReponseFournisseurService) ListReviews(ctx context.Context, formulaireID int64, clientUserID *int64, supplierID int64) ([]*domain.ClientAnswerView, error) {
	if supplierID == 0 {
		return nil, ErrNoPrincipal
	}
	if formulaireID == 0 {
		return nil, domain.NewValidationError("FormulaireId is required")
	}
	if _, err := s.forms.GetByID(ctx, formulaireID); err != nil {
		return nil, s.fail(ctx, translate(err, "Formulaire", formulaireID), formulaireID)
	}

	views, err := s.reviews.ListAnswerViews(ctx, formulaireID, clientUserID, supplierID)
	if err != nil {
		return nil, internal(ctx, "failed to list reviews", err, "formulaire_id", formulaireID)
	}
	if views == nil {
		views = []*domain.ClientAnswerView{}
	}
	return views, nil
}

// Create adds a comment for userID / Ajoute un commentaire pour userID
func (s *ReponseFournisseurService) Create(ctx context.Context, userID int64, in ReviewInput) (*domain.ReponseFournisseur, error) {
	if in.ReponseClientID == 0 {
		return nil, domain.NewValidationError("ReponseClientId is required")
	}
	if strings.TrimSpace(in.Commentaire) == "" {
		return nil, domain.NewValidationError("Commentaire is required")
	}
	if _, err := s.answers.GetByID(ctx, in.ReponseClientID); err != nil {
		return nil, s.fail(ctx, translate(err, "ReponseClient", in.ReponseClientID), in.ReponseClientID)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, s.fail(ctx, translate(err, "User", userID), userID)
	}

	rf, err := s.reviews.Create(ctx, &domain.ReponseFournisseur{
		Commentaire:     in.Commentaire,
		DateReponse:     s.now(),
		ReponseClientID: in.ReponseClientID,
		UserID:          userID,
	})
	if err != nil {
		return nil, s.fail(ctx, err, nil)
	}
	return rf, nil
}

// Get returns one comment / Retourne un commentaire
func (s *ReponseFournisseurService) Get(ctx context.Context, id int64) (*domain.ReponseFournisseur, error) {
	rf, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, err, id)
	}
	return rf, nil
}

// List returns every comment / Retourne tous les commentaires
func (s *ReponseFournisseurService) List(ctx context.Context) ([]*domain.ReponseFournisseur, error) {
	out, err := s.reviews.List(ctx)
	if err != nil {
		return nil, internal(ctx, "failed to list reponses fournisseur", err)
	}
	return out, nil
}

// Update changes the commentaire only / Modifie uniquement le commentaire
func (s *ReponseFournisseurService) Update(ctx context.Context, id int64, commentaire string) (*domain.ReponseFournisseur, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.reviews.UpdateCommentaire(ctx, id, commentaire, s.now()); err != nil {
		return nil, s.fail(ctx, err, id)
	}
	return s.Get(ctx, id)
}

// Delete removes one comment / Supprime un commentaire
func (s *ReponseFournisseurService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return s.fail(ctx, err, id)
	}
	return nil
}

func (s *ReponseFournisseurService) fail(ctx context.Context, err error, id any) error {
	if err = translate(err, "ReponseFournisseur", id); isKind(err) {
		return err
	}
	return internal(ctx, "reponse fournisseur operation failed", err, "id", id)
}

package ports

import (
	"context"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
)

// FormulaireRepository persists forms / Persiste les formulaires
type FormulaireRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Formulaire, error)
	// List returns forms newest first / Retourne les formulaires du plus récent au plus ancien
	List(ctx context.Context) ([]*domain.Formulaire, error)
	Create(ctx context.Context, f *domain.Formulaire) (*domain.Formulaire, error)
	Update(ctx context.Context, f *domain.Formulaire) error
	// Delete removes the form, its questions and their responses / Supprime le formulaire, ses questions et leurs réponses
	Delete(ctx context.Context, id int64) error
	WithTx(dbtx DBTX) FormulaireRepository
}

// QuestionReader reads questions / Lit les questions
type QuestionReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Question, error)
	List(ctx context.Context) ([]*domain.Question, error)
	// Search filters and pages questions, newest first / Filtre et pagine, plus récentes d'abord
	Search(ctx context.Context, filter domain.QuestionFilter) ([]*domain.Question, int, error)
	ListByFormulaire(ctx context.Context, formulaireID int64) ([]*domain.Question, error)
	// IDsByFormulaire returns member IDs in ascending order / Retourne les IDs membres triés
	IDsByFormulaire(ctx context.Context, formulaireID int64) ([]int64, error)
	// FindByIDs returns the questions that exist among ids / Retourne les questions existantes parmi ids
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Question, error)
	ExistsInFormulaire(ctx context.Context, questionID, formulaireID int64) (bool, error)
}

// QuestionWriter writes questions and form membership / Écrit les questions et leur appartenance
type QuestionWriter interface {
	Create(ctx context.Context, q *domain.Question) (*domain.Question, error)
	Update(ctx context.Context, q *domain.Question) error
	// Delete removes question and its responses / Supprime la question et ses réponses
	Delete(ctx context.Context, id int64) error
	// DetachAll clears formulaire_id of every member / Détache tous les membres
	DetachAll(ctx context.Context, formulaireID int64) (int64, error)
	// DetachExcept clears formulaire_id of members not in keep / Détache les membres absents de keep
	DetachExcept(ctx context.Context, formulaireID int64, keep []int64) (int64, error)
	// Attach sets formulaire_id on ids / Rattache ids au formulaire
	Attach(ctx context.Context, formulaireID int64, ids []int64) (int64, error)
}

// QuestionRepository composes question reads and writes / Compose lectures et écritures de questions
type QuestionRepository interface {
	QuestionReader
	QuestionWriter
	WithTx(dbtx DBTX) QuestionRepository
}

// ReponseClientRepository persists client answers / Persiste les réponses clients
type ReponseClientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ReponseClient, error)
	List(ctx context.Context) ([]*domain.ReponseClient, error)
	GetByUserAndQuestion(ctx context.Context, userID, questionID int64) (*domain.ReponseClient, error)
	ListByUserAndFormulaire(ctx context.Context, userID, formulaireID int64) ([]*domain.ReponseClient, error)
	Create(ctx context.Context, rc *domain.ReponseClient) (*domain.ReponseClient, error)
	UpdateValeur(ctx context.Context, id int64, valeur string, at time.Time) error
	// Delete removes the answer and supplier comments on it / Supprime la réponse et les commentaires associés
	Delete(ctx context.Context, id int64) error
	WithTx(dbtx DBTX) ReponseClientRepository
}

// ReponseFournisseurRepository persists supplier comments / Persiste les commentaires fournisseurs
type ReponseFournisseurRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.ReponseFournisseur, error)
	List(ctx context.Context) ([]*domain.ReponseFournisseur, error)
	GetByReponseClientAndUser(ctx context.Context, reponseClientID, userID int64) (*domain.ReponseFournisseur, error)
	// ListAnswerViews joins client answers of a form with supplierID's comments / Joint les réponses d'un formulaire aux commentaires du fournisseur
	ListAnswerViews(ctx context.Context, formulaireID int64, clientUserID *int64, supplierID int64) ([]*domain.ClientAnswerView, error)
	Create(ctx context.Context, rf *domain.ReponseFournisseur) (*domain.ReponseFournisseur, error)
	UpdateCommentaire(ctx context.Context, id int64, commentaire string, at time.Time) error
	Delete(ctx context.Context, id int64) error
	WithTx(dbtx DBTX) ReponseFournisseurRepository
}

// FormulaireCache caches form reads / Met en cache les lectures de formulaires
type FormulaireCache interface {
	List(ctx context.Context, load func(context.Context) ([]*domain.Formulaire, error)) ([]*domain.Formulaire, error)
	Detail(ctx context.Context, id int64, load func(context.Context) (*domain.FormulaireDetail, error)) (*domain.FormulaireDetail, error)
	// Invalidate drops every cached form / Supprime tous les formulaires en cache
	Invalidate()
}

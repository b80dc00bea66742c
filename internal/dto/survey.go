package dto

import (
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
)

type FormulaireListDTO struct {
	ID           int64     `json:"id"`
	Titre        string    `json:"titre"`
	DateCreation time.Time `json:"dateCreation"`
	OwnerEmail   *string   `json:"ownerEmail"`
}

type FormulaireDetailDTO struct {
	ID           int64          `json:"id"`
	Titre        string         `json:"titre"`
	DateCreation time.Time      `json:"dateCreation"`
	Questions    []*QuestionDTO `json:"questions"`
}

// FormulaireRequest creates or renames a form / Crée ou renomme un formulaire
type FormulaireRequest struct {
	Titre  string `json:"titre"`
	UserID *int64 `json:"userId,omitempty"` // Update only, moves ownership
}

// ReplaceQuestionsRequest is the exact membership wanted / Appartenance exacte souhaitée
type ReplaceQuestionsRequest struct {
	QuestionIDs []int64 `json:"questionIds"`
}

type QuestionDTO struct {
	ID           int64  `json:"id"`
	Contenu      string `json:"contenu"`
	Type         string `json:"type"`
	FormulaireID *int64 `json:"formulaireId,omitempty"`
}

type QuestionRequest struct {
	Contenu      string `json:"contenu"`
	Type         string `json:"type"`
	FormulaireID *int64 `json:"formulaireId"`
}

// QuestionPageDTO is a page of search results / Page de résultats
type QuestionPageDTO struct {
	Content       []*QuestionDTO `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int            `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
}

// SubmissionRequest answers a form / Réponses à un formulaire
type SubmissionRequest struct {
	Answers []AnswerDTO `json:"answers"`
}

type AnswerDTO struct {
	QuestionID int64  `json:"questionId"`
	Valeur     string `json:"valeur"`
}

type ReponseClientDTO struct {
	ID             int64     `json:"id"`
	QuestionID     int64     `json:"questionId"`
	Valeur         string    `json:"valeur"`
	DateSoumission time.Time `json:"dateSoumission"`
	UserID         int64     `json:"userId"`
}

type ReponseClientRequest struct {
	QuestionID int64  `json:"questionId"`
	Valeur     string `json:"valeur"`
}

type ReponseFournisseurDTO struct {
	ID              int64     `json:"id"`
	Commentaire     string    `json:"commentaire"`
	DateReponse     time.Time `json:"dateReponse"`
	ReponseClientID int64     `json:"reponseClientId"`
	UserID          int64     `json:"userId"`
}

// UpsertRequest comments one client answer / Commente une réponse client
type UpsertRequest struct {
	ReponseClientID int64  `json:"reponseClientId"`
	Commentaire     string `json:"commentaire"`
}

type UpsertBatchRequest struct {
	Items []UpsertRequest `json:"items"`
}

type ClientAnswerViewDTO struct {
	ReponseClientID        int64      `json:"reponseClientId"`
	QuestionID             int64      `json:"questionId"`
	QuestionLabel          string     `json:"questionLabel"`
	QuestionType           string     `json:"questionType"`
	ClientUserID           int64      `json:"clientUserId"`
	ClientEmail            string     `json:"clientEmail"`
	ClientAnswer           string     `json:"clientAnswer"`
	SubmittedAt            time.Time  `json:"submittedAt"`
	FournisseurResponseID  *int64     `json:"fournisseurResponseId"`
	FournisseurComment     *string    `json:"fournisseurComment"`
	FournisseurRespondedAt *time.Time `json:"fournisseurRespondedAt"`
}

func ToFormulaireList(forms []*domain.Formulaire) []*FormulaireListDTO {
	out := make([]*FormulaireListDTO, 0, len(forms))
	for _, f := range forms {
		out = append(out, ToFormulaireItem(f))
	}
	return out
}

func ToFormulaireItem(f *domain.Formulaire) *FormulaireListDTO {
	return &FormulaireListDTO{ID: f.ID, Titre: f.Titre, DateCreation: f.DateCreation, OwnerEmail: f.OwnerEmail}
}

// ToFormulaireDetail drops formulaireId from nested questions / Omet formulaireId dans les questions
func ToFormulaireDetail(d *domain.FormulaireDetail) *FormulaireDetailDTO {
	questions := make([]*QuestionDTO, 0, len(d.Questions))
	for _, q := range d.Questions {
		questions = append(questions, &QuestionDTO{ID: q.ID, Contenu: q.Contenu, Type: q.Type})
	}
	return &FormulaireDetailDTO{
		ID:           d.ID,
		Titre:        d.Titre,
		DateCreation: d.DateCreation,
		Questions:    questions,
	}
}

func ToQuestion(q *domain.Question) *QuestionDTO {
	return &QuestionDTO{ID: q.ID, Contenu: q.Contenu, Type: q.Type, FormulaireID: q.FormulaireID}
}

func ToQuestions(questions []*domain.Question) []*QuestionDTO {
	out := make([]*QuestionDTO, 0, len(questions))
	for _, q := range questions {
		out = append(out, ToQuestion(q))
	}
	return out
}

func ToReponseClient(r *domain.ReponseClient) *ReponseClientDTO {
	return &ReponseClientDTO{
		ID:             r.ID,
		QuestionID:     r.QuestionID,
		Valeur:         r.Valeur,
		DateSoumission: r.DateSoumission,
		UserID:         r.UserID,
	}
}

func ToReponsesClient(rs []*domain.ReponseClient) []*ReponseClientDTO {
	out := make([]*ReponseClientDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToReponseClient(r))
	}
	return out
}

func ToReponseFournisseur(r *domain.ReponseFournisseur) *ReponseFournisseurDTO {
	return &ReponseFournisseurDTO{
		ID:              r.ID,
		Commentaire:     r.Commentaire,
		DateReponse:     r.DateReponse,
		ReponseClientID: r.ReponseClientID,
		UserID:          r.UserID,
	}
}

func ToReponsesFournisseur(rs []*domain.ReponseFournisseur) []*ReponseFournisseurDTO {
	out := make([]*ReponseFournisseurDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToReponseFournisseur(r))
	}
	return out
}

func ToClientAnswerViews(views []*domain.ClientAnswerView) []*ClientAnswerViewDTO {
	out := make([]*ClientAnswerViewDTO, 0, len(views))
	for _, v := range views {
		out = append(out, &ClientAnswerViewDTO{
			ReponseClientID:        v.ReponseClientID,
			QuestionID:             v.QuestionID,
			QuestionLabel:          v.QuestionLabel,
			QuestionType:           v.QuestionType,
			ClientUserID:           v.ClientUserID,
			ClientEmail:            v.ClientEmail,
			ClientAnswer:           v.ClientAnswer,
			SubmittedAt:            v.SubmittedAt,
			FournisseurResponseID:  v.FournisseurResponseID,
			FournisseurComment:     v.FournisseurComment,
			FournisseurRespondedAt: v.FournisseurRespondedAt,
		})
	}
	return out
}

// BatchErrorResponse reports where a batch stopped / Indique où le lot s'est arrêté
type BatchErrorResponse struct {
	Error     string                   `json:"error"`
	Index     int                      `json:"index"`
	Completed []*ReponseFournisseurDTO `json:"completed"`
}

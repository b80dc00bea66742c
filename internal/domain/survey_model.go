package domain

import "time"

// Formulaire is a form owned by a user / Formulaire appartenant à un utilisateur
type Formulaire struct {
	ID           int64
	Titre        string
	DateCreation time.Time
	UserID       *int64 // Owner, nil when unknown / Propriétaire, nil si inconnu
	OwnerEmail   *string
}

// Question belongs to at most one formulaire / Appartient à au plus un formulaire
type Question struct {
	ID           int64
	Contenu      string
	Type         string // Free text / Texte libre
	FormulaireID *int64 // nil when detached / nil si détachée
}

// InFormulaire reports whether question is attached to formulaireID / Indique si la question est rattachée au formulaire
func (q *Question) InFormulaire(formulaireID int64) bool {
	return q.FormulaireID != nil && *q.FormulaireID == formulaireID
}

// ReponseClient is a client's answer, unique per (user, question) / Réponse client, unique par (utilisateur, question)
type ReponseClient struct {
	ID             int64
	Valeur         string
	DateSoumission time.Time
	QuestionID     int64
	UserID         int64
}

// ReponseFournisseur is a supplier comment, unique per (user, reponse client) / Commentaire fournisseur, unique par (utilisateur, réponse client)
type ReponseFournisseur struct {
	ID              int64
	Commentaire     string
	DateReponse     time.Time
	ReponseClientID int64
	UserID          int64
}

// ClientAnswerView joins a client answer with the calling supplier's comment / Joint une réponse client au commentaire du fournisseur appelant
type ClientAnswerView struct {
	ReponseClientID        int64
	QuestionID             int64
	QuestionLabel          string
	QuestionType           string
	ClientUserID           int64
	ClientEmail            string
	ClientAnswer           string
	SubmittedAt            time.Time
	FournisseurResponseID  *int64
	FournisseurComment     *string
	FournisseurRespondedAt *time.Time
}

// QuestionFilter narrows question searches / Restreint la recherche de questions
type QuestionFilter struct {
	Type   string // exact, case-insensitive / exact, insensible à la casse
	Query  string // substring of contenu / sous-chaîne du contenu
	Offset int
	Limit  int
}

// FormulaireDetail is a form with its questions / Formulaire avec ses questions
type FormulaireDetail struct {
	Formulaire
	Questions []*Question
}

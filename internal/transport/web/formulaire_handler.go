package web

import (
	"net/http"

	"github.com/Walehamdi1/QNA/internal/dto"
	"github.com/Walehamdi1/QNA/internal/service"
)

// ListFormulaires returns forms newest first / Retourne les formulaires, plus récents d'abord
func (h *Handler) ListFormulaires(w http.ResponseWriter, r *http.Request) {
	forms, err := h.container.FormulaireSvc.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToFormulaireList(forms))
}

// GetFormulaire returns a form with its questions / Retourne un formulaire avec ses questions
func (h *Handler) GetFormulaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.container.FormulaireSvc.GetDetail(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToFormulaireDetail(detail))
}

// CreateFormulaire adds a form owned by the userId path value
func (h *Handler) CreateFormulaire(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req dto.FormulaireRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := h.container.FormulaireSvc.Create(r.Context(), ownerID, req.Titre)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToFormulaireItem(f))
}

func (h *Handler) UpdateFormulaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.FormulaireRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := h.container.FormulaireSvc.Update(r.Context(), id, req.Titre, req.UserID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToFormulaireItem(f))
}

// DeleteFormulaire cascades to questions and their answers / Supprime en cascade questions et réponses
func (h *Handler) DeleteFormulaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.container.FormulaireSvc.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFormulaireQuestionIDs returns member question ids ascending / Retourne les ids des questions membres
func (h *Handler) GetFormulaireQuestionIDs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ids, err := h.container.QuestionSvc.GetQuestionIDsOfFormulaire(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	jsonResponse(w, ids)
}

// ReplaceFormulaireQuestions makes membership exactly questionIds / Rend l'appartenance exactement égale à questionIds
func (h *Handler) ReplaceFormulaireQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ReplaceQuestionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.container.QuestionSvc.ReplaceFormulaireQuestions(r.Context(), id, req.QuestionIDs); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitFormulaire stores the caller's answers atomically / Enregistre les réponses de l'appelant de façon atomique
func (h *Handler) SubmitFormulaire(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	caller, _ := PrincipalFromContext(r.Context())

	var req dto.SubmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answers := make([]service.AnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, service.AnswerInput{QuestionID: a.QuestionID, Valeur: a.Valeur})
	}

	saved, err := h.container.ReponseSvc.Submit(r.Context(), caller.UserID, id, answers)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponsesClient(saved))
}

// MyResponses returns the caller's answers for a form / Retourne les réponses de l'appelant
func (h *Handler) MyResponses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	caller, _ := PrincipalFromContext(r.Context())

	rs, err := h.container.ReponseSvc.MyResponses(r.Context(), caller.UserID, id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponsesClient(rs))
}

package web

import (
	"net/http"

	"github.com/Walehamdi1/QNA/internal/dto"
	"github.com/Walehamdi1/QNA/internal/service"
)

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.container.QuestionSvc.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToQuestions(qs))
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	q, err := h.container.QuestionSvc.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToQuestion(q))
}

// SearchQuestions pages questions by ?type=&q=&page=&size= / Pagine les questions filtrées
func (h *Handler) SearchQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	size, err := queryInt(r, "size", 0)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	result, err := h.container.QuestionSvc.Search(r.Context(), q.Get("type"), q.Get("q"), page, size)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	jsonResponse(w, dto.QuestionPageDTO{
		Content:       dto.ToQuestions(result.Content),
		Page:          result.Page,
		Size:          result.Size,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
	})
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req dto.QuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	q, err := h.container.QuestionSvc.Create(r.Context(), service.QuestionInput{
		Contenu:      req.Contenu,
		Type:         req.Type,
		FormulaireID: req.FormulaireID,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToQuestion(q))
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.QuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	q, err := h.container.QuestionSvc.Update(r.Context(), id, service.QuestionInput{
		Contenu:      req.Contenu,
		Type:         req.Type,
		FormulaireID: req.FormulaireID,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToQuestion(q))
}

// DeleteQuestion cascades to client and supplier answers / Supprime en cascade les réponses
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.container.QuestionSvc.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package web

import (
	"errors"
	"net/http"

	"github.com/Walehamdi1/QNA/internal/dto"
	"github.com/Walehamdi1/QNA/internal/service"
)

// CreateReponseClient upserts the caller's answer to one question / Crée ou met à jour la réponse de l'appelant
func (h *Handler) CreateReponseClient(w http.ResponseWriter, r *http.Request) {
	caller, _ := PrincipalFromContext(r.Context())

	var req dto.ReponseClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rc, err := h.container.ReponseSvc.Create(r.Context(), caller.UserID, req.QuestionID, req.Valeur)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponseClient(rc))
}

func (h *Handler) ListReponsesClient(w http.ResponseWriter, r *http.Request) {
	rs, err := h.container.ReponseSvc.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponsesClient(rs))
}

func (h *Handler) GetReponseClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rc, err := h.container.ReponseSvc.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponseClient(rc))
}

func (h *Handler) UpdateReponseClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ReponseClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rc, err := h.container.ReponseSvc.Update(r.Context(), id, req.Valeur)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponseClient(rc))
}

func (h *Handler) DeleteReponseClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.container.ReponseSvc.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReviews joins a form's client answers with the caller's comments / Joint les réponses clients aux commentaires de l'appelant
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	caller, _ := PrincipalFromContext(r.Context())

	formID, err := queryID(r, "formulaireId")
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if formID == nil {
		ErrorResponse(w, "formulaireId is required", http.StatusBadRequest)
		return
	}
	clientID, err := queryID(r, "clientUserId")
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	views, err := h.container.ReviewSvc.ListReviews(r.Context(), *formID, clientID, caller.UserID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToClientAnswerViews(views))
}

// UpsertReview creates or updates the caller's comment / Crée ou met à jour le commentaire de l'appelant
func (h *Handler) UpsertReview(w http.ResponseWriter, r *http.Request) {
	caller, _ := PrincipalFromContext(r.Context())

	var req dto.UpsertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rf, err := h.container.ReviewSvc.UpsertOne(r.Context(), caller.UserID, service.ReviewInput{
		ReponseClientID: req.ReponseClientID,
		Commentaire:     req.Commentaire,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponseFournisseur(rf))
}

// UpsertReviewBatch stops at the first failing item; earlier items stay saved
func (h *Handler) UpsertReviewBatch(w http.ResponseWriter, r *http.Request) {
	caller, _ := PrincipalFromContext(r.Context())

	var req dto.UpsertBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]service.ReviewInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.ReviewInput{ReponseClientID: it.ReponseClientID, Commentaire: it.Commentaire})
	}

	saved, err := h.container.ReviewSvc.UpsertBatch(r.Context(), caller.UserID, items)
	var itemErr *service.BatchItemError
	switch {
	case err == nil:
		jsonResponse(w, dto.ToReponsesFournisseur(saved))
	case errors.As(err, &itemErr) && statusFor(err) != http.StatusInternalServerError:
		writeJSON(w, statusFor(err), dto.BatchErrorResponse{
			Error:     itemErr.Err.Error(),
			Index:     itemErr.Index,
			Completed: dto.ToReponsesFournisseur(saved),
		})
	default:
		WriteServiceError(w, r, err)
	}
}

// CreateReponseFournisseur adds a comment as the caller / Ajoute un commentaire au nom de l'appelant
func (h *Handler) CreateReponseFournisseur(w http.ResponseWriter, r *http.Request) {
	caller, _ := PrincipalFromContext(r.Context())

	var req dto.UpsertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rf, err := h.container.ReviewSvc.Create(r.Context(), caller.UserID, service.ReviewInput{
		ReponseClientID: req.ReponseClientID,
		Commentaire:     req.Commentaire,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponseFournisseur(rf))
}

func (h *Handler) ListReponsesFournisseur(w http.ResponseWriter, r *http.Request) {
	rs, err := h.container.ReviewSvc.List(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponsesFournisseur(rs))
}

func (h *Handler) GetReponseFournisseur(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rf, err := h.container.ReviewSvc.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponseFournisseur(rf))
}

func (h *Handler) UpdateReponseFournisseur(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpsertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rf, err := h.container.ReviewSvc.Update(r.Context(), id, req.Commentaire)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	jsonResponse(w, dto.ToReponseFournisseur(rf))
}

func (h *Handler) DeleteReponseFournisseur(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.container.ReviewSvc.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

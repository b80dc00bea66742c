package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", domain.NewValidationError("Titre is required"), http.StatusBadRequest, "Titre is required"},
		{"missing questions", &domain.MissingQuestionsError{IDs: []int64{7}}, http.StatusBadRequest, "Some question IDs do not exist: [7]"},
		{"expired", domain.ErrExpired, http.StatusBadRequest, domain.ErrExpired.Error()},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, domain.ErrUnauthorized.Error()},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, domain.ErrForbidden.Error()},
		{"not found", domain.NewNotFoundError("Question", 3), http.StatusNotFound, domain.NewNotFoundError("Question", 3).Error()},
		{"conflict", domain.ErrConflict, http.StatusConflict, domain.ErrConflict.Error()},
		{"batch item", &service.BatchItemError{Index: 2, Err: domain.NewNotFoundError("ReponseClient", 9)}, http.StatusNotFound, ""},
		{"internal", fmt.Errorf("%w: boom", service.ErrInternal), http.StatusInternalServerError, "Internal server error"},
		{"unknown", errors.New("driver: bad connection"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.code, rec.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorOf(t, rec))
			}
		})
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorOf(t, rec))

	abort := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic(http.ErrAbortHandler) }))
	assert.Panics(t, func() { abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)) })
}

func TestLoggingRejectsTokenInQuery(t *testing.T) {
	called := false
	h := Logging(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/questions?access_token=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/questions?type=text", nil))
	assert.True(t, called)
}

package web

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Walehamdi1/QNA/internal/app"
	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/domain"
)

// NewMux creates and configures the HTTP router / Crée et configure le routeur HTTP
func NewMux(h *Handler, conf *config.Config, container *app.Container) http.Handler {
	mux := http.NewServeMux()
	mw := NewMiddleware(context.Background(), conf, container.Metrics, container.AuthSvc)

	// Probes and scraping, no auth
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /ready", h.ReadinessCheck)
	mux.Handle("GET /metrics", promhttp.HandlerFor(container.Registry, promhttp.HandlerOpts{}))

	// Public authentication
	mux.Handle("POST /user/register", chain(h.Register, mw.RateLimitStrict))
	mux.Handle("POST /user/auth", chain(h.Authenticate, mw.RateLimitStrict))
	mux.Handle("POST /user/refresh", chain(h.RefreshToken, mw.RateLimitStrict))
	mux.HandleFunc("POST /user/logout", h.Logout)
	mux.Handle("POST /user/forgot-password", chain(h.ForgotPassword, mw.RateLimitStrict))
	mux.Handle("POST /user/forgot-password/verify", chain(h.VerifyResetCode, mw.RateLimitStrict))
	mux.Handle("POST /user/forgot-password/reset", chain(h.ResetPassword, mw.RateLimitStrict))

	authed := func(f http.HandlerFunc, extra ...func(http.Handler) http.Handler) http.Handler {
		return chain(f, append([]func(http.Handler) http.Handler{mw.Auth, mw.RateLimitByUser}, extra...)...)
	}
	can := mw.RequirePermission

	// Any authenticated role
	mux.Handle("GET /user/profile/{email}", authed(h.GetProfile))
	mux.Handle("PUT /user/profile", authed(h.UpdateProfile))
	mux.Handle("GET /api/formulaires", authed(h.ListFormulaires))
	mux.Handle("GET /api/formulaires/{id}", authed(h.GetFormulaire))
	mux.Handle("GET /api/formulaires/{id}/questions", authed(h.GetFormulaireQuestionIDs))
	mux.Handle("GET /api/questions", authed(h.ListQuestions))
	mux.Handle("GET /api/questions/search", authed(h.SearchQuestions))
	mux.Handle("GET /api/questions/{id}", authed(h.GetQuestion))

	// Forms and questions authoring
	formsWrite := can(domain.PermissionFormsWrite)
	mux.Handle("PUT /api/formulaires/{id}", authed(h.UpdateFormulaire, formsWrite))
	mux.Handle("DELETE /api/formulaires/{id}", authed(h.DeleteFormulaire, formsWrite))
	mux.Handle("PUT /api/formulaires/{id}/questions", authed(h.ReplaceFormulaireQuestions, formsWrite))
	mux.Handle("POST /api/questions", authed(h.CreateQuestion, formsWrite))
	mux.Handle("PUT /api/questions/{id}", authed(h.UpdateQuestion, formsWrite))
	mux.Handle("DELETE /api/questions/{id}", authed(h.DeleteQuestion, formsWrite))

	// Client answers
	submit := can(domain.PermissionResponsesSubmit)
	read := can(domain.PermissionResponsesRead)
	// POST /api/formulaires/user/{userId} and /api/formulaires/{id}/submit overlap on /user/submit
	mux.Handle("POST /api/formulaires/{id}/{action}", formulairePost(
		authed(h.CreateFormulaire, formsWrite),
		authed(h.SubmitFormulaire, submit),
	))
	mux.Handle("GET /api/formulaires/{id}/responses/me", authed(h.MyResponses, submit))
	mux.Handle("POST /api/reponse-client", authed(h.CreateReponseClient, submit))
	mux.Handle("PUT /api/reponse-client/{id}", authed(h.UpdateReponseClient, submit))
	mux.Handle("DELETE /api/reponse-client/{id}", authed(h.DeleteReponseClient, submit))
	mux.Handle("GET /api/reponse-client", authed(h.ListReponsesClient, read))
	mux.Handle("GET /api/reponse-client/{id}", authed(h.GetReponseClient, read))

	// Supplier comments
	reviews := can(domain.PermissionReviewsWrite)
	mux.Handle("GET /api/reponse-fournisseur/reviews", authed(h.ListReviews, reviews))
	mux.Handle("POST /api/reponse-fournisseur/upsert", authed(h.UpsertReview, reviews))
	mux.Handle("POST /api/reponse-fournisseur/upsert-batch", authed(h.UpsertReviewBatch, reviews))
	mux.Handle("POST /api/reponse-fournisseur", authed(h.CreateReponseFournisseur, reviews))
	mux.Handle("PUT /api/reponse-fournisseur/{id}", authed(h.UpdateReponseFournisseur, reviews))
	mux.Handle("DELETE /api/reponse-fournisseur/{id}", authed(h.DeleteReponseFournisseur, reviews))
	mux.Handle("GET /api/reponse-fournisseur", authed(h.ListReponsesFournisseur, read))
	mux.Handle("GET /api/reponse-fournisseur/{id}", authed(h.GetReponseFournisseur, read))

	// Account administration
	users := can(domain.PermissionUsersManage)
	mux.Handle("GET /user", authed(h.ListUsers, users))
	mux.Handle("POST /user", authed(h.CreateUser, users))
	mux.Handle("GET /user/by-id/{id}", authed(h.GetUserByID, users))
	mux.Handle("GET /user/by-email/{email}", authed(h.GetUserByEmail, users))
	mux.Handle("PUT /user/{id}", authed(h.UpdateUser, users))
	mux.Handle("DELETE /user/{id}", authed(h.DeleteUser, users))
	mux.Handle("PUT /user/{id}/password", authed(h.SetUserPassword, users))

	// Global middlewares, innermost first / Middlewares globaux, du plus interne au plus externe
	var handler http.Handler = mux
	handler = mw.MetricsMiddleware(handler)
	handler = mw.RateLimit(handler)
	handler = mw.SecurityHeaders(handler)
	handler = mw.Cors(handler)
	handler = Timeout(conf.Server.RequestTimeout)(handler)
	handler = Recover(handler)
	handler = Logging(handler)
	handler = RequestID(handler)

	return handler
}

// formulairePost routes user/{userId} to create and {id}/submit to submit / Aiguille création et soumission
func formulairePost(create, submit http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.PathValue("id") == "user":
			r.SetPathValue("userId", r.PathValue("action"))
			create.ServeHTTP(w, r)
		case r.PathValue("action") == "submit":
			submit.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// chain applies middlewares so the first one runs first / Applique les middlewares dans l'ordre donné
func chain(f http.HandlerFunc, middlewares ...func(http.Handler) http.Handler) http.Handler {
	var handler http.Handler = f
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

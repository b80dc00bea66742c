package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Walehamdi1/QNA/internal/domain"
)

// surveySetup seeds one admin-owned form holding questions 1, 2, 3 and a free question 4
type surveySetup struct {
	env                        *testEnv
	admin, client, fournisseur *domain.User
	form                       *domain.Formulaire
	q                          []*domain.Question // q[0..3] have ids 1..4
}

func newSurveySetup(t *testing.T) *surveySetup {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()
	s := &surveySetup{
		env:         env,
		admin:       env.register(t, "admin@example.com", "secret1", "ADMIN"),
		client:      env.register(t, "client@example.com", "secret1", "CLIENT"),
		fournisseur: env.register(t, "fournisseur@example.com", "secret1", "FOURNISSEUR"),
	}

	var err error
	s.form, err = env.forms.Create(ctx, s.admin.ID, "Satisfaction")
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	other, err := env.forms.Create(ctx, s.admin.ID, "Autre")
	if err != nil {
		t.Fatalf("create form: %v", err)
	}

	for i, contenu := range []string{"Q1", "Q2", "Q3", "Q4"} {
		target := s.form.ID
		if i == 3 {
			target = other.ID
		}
		q, err := env.questions.Create(ctx, QuestionInput{Contenu: contenu, Type: "TEXT", FormulaireID: &target})
		if err != nil {
			t.Fatalf("create question: %v", err)
		}
		s.q = append(s.q, q)
	}
	return s
}

func (s *surveySetup) ids(idx ...int) []int64 {
	out := make([]int64, len(idx))
	for i, n := range idx {
		out[i] = s.q[n].ID
	}
	return out
}

func TestQuestionService_Reconcile(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	// {1,2,3} -> [2,3,4]
	target := append(s.ids(1, 2, 3), s.q[2].ID)
	if err := s.env.questions.ReplaceFormulaireQuestions(ctx, s.form.ID, target); err != nil {
		t.Fatalf("ReplaceFormulaireQuestions() error = %v", err)
	}
	if got, want := s.env.questionsOf(t, s.form.ID), s.ids(1, 2, 3); !slices.Equal(got, want) {
		t.Errorf("membership = %v, want %v", got, want)
	}

	q1, err := s.env.questions.Get(ctx, s.q[0].ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if q1.FormulaireID != nil {
		t.Errorf("question 1 still attached to %d", *q1.FormulaireID)
	}

	// Idempotent
	if err := s.env.questions.ReplaceFormulaireQuestions(ctx, s.form.ID, s.ids(3, 2, 1)); err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if got, want := s.env.questionsOf(t, s.form.ID), s.ids(1, 2, 3); !slices.Equal(got, want) {
		t.Errorf("membership after repeat = %v, want %v", got, want)
	}
	if s.env.metrics.Reconciliations["success"] != 2 {
		t.Errorf("reconciliations = %v", s.env.metrics.Reconciliations)
	}
}

func TestQuestionService_Reconcile_MissingIDs(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()
	before := s.env.questionsOf(t, s.form.ID)

	err := s.env.questions.ReplaceFormulaireQuestions(ctx, s.form.ID, []int64{s.q[1].ID, 99, s.q[2].ID, 98})
	var missing *domain.MissingQuestionsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingQuestionsError", err)
	}
	if !slices.Equal(missing.IDs, []int64{98, 99}) {
		t.Errorf("missing = %v, want [98 99]", missing.IDs)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Error("missing ids should be a validation error")
	}
	if missing.Error() != "Some question IDs do not exist: [98, 99]" {
		t.Errorf("message = %q", missing.Error())
	}

	if got := s.env.questionsOf(t, s.form.ID); !slices.Equal(got, before) {
		t.Errorf("membership changed to %v, want %v", got, before)
	}
}

func TestQuestionService_Reconcile_EmptyAndUnknownForm(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	if err := s.env.questions.ReplaceFormulaireQuestions(ctx, s.form.ID, nil); err != nil {
		t.Fatalf("empty reconcile error = %v", err)
	}
	if got := s.env.questionsOf(t, s.form.ID); len(got) != 0 {
		t.Errorf("membership = %v, want empty", got)
	}
	if s.env.count(t, "questions") != 4 {
		t.Error("detaching must not delete questions")
	}

	if err := s.env.questions.ReplaceFormulaireQuestions(ctx, 999, s.ids(0)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown form error = %v, want not found", err)
	}
}

func TestFormulaireService_CacheInvalidation(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	detail, err := s.env.forms.GetDetail(ctx, s.form.ID)
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(detail.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(detail.Questions))
	}

	if err := s.env.questions.ReplaceFormulaireQuestions(ctx, s.form.ID, s.ids(0)); err != nil {
		t.Fatalf("reconcile error = %v", err)
	}
	detail, err = s.env.forms.GetDetail(ctx, s.form.ID)
	if err != nil {
		t.Fatalf("GetDetail() error = %v", err)
	}
	if len(detail.Questions) != 1 {
		t.Errorf("stale detail: questions = %d, want 1", len(detail.Questions))
	}

	list, err := s.env.forms.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Titre != "Autre" {
		t.Errorf("list = %v, want newest first", list)
	}
	if _, err := s.env.forms.Update(ctx, s.form.ID, "Renamed", nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	detail, _ = s.env.forms.GetDetail(ctx, s.form.ID)
	if detail.Titre != "Renamed" {
		t.Errorf("titre = %q, want Renamed", detail.Titre)
	}
}

func TestFormulaireService_Validation(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	if _, err := s.env.forms.Create(ctx, s.admin.ID, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank titre error = %v", err)
	}
	if _, err := s.env.forms.Create(ctx, 999, "Titre"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown owner error = %v", err)
	}
	if _, err := s.env.forms.GetDetail(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown form error = %v", err)
	}
	if _, err := s.env.questions.Create(ctx, QuestionInput{Contenu: "Q"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("question without form error = %v", err)
	}
}

func TestFormulaireService_DeleteCascades(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	answers, err := s.env.answers.Submit(ctx, s.client.ID, s.form.ID, []AnswerInput{{QuestionID: s.q[0].ID, Valeur: "oui"}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := s.env.reviews.UpsertOne(ctx, s.fournisseur.ID, ReviewInput{ReponseClientID: answers[0].ID, Commentaire: "ok"}); err != nil {
		t.Fatalf("UpsertOne() error = %v", err)
	}

	if err := s.env.forms.Delete(ctx, s.form.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := s.env.count(t, "questions"); n != 1 {
		t.Errorf("questions = %d, want 1", n)
	}
	if n := s.env.count(t, "reponses_client"); n != 0 {
		t.Errorf("reponses_client = %d, want 0", n)
	}
	if n := s.env.count(t, "reponses_fournisseur"); n != 0 {
		t.Errorf("reponses_fournisseur = %d, want 0", n)
	}
}

func TestQuestionService_Search(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	page, err := s.env.questions.Search(ctx, "text", "q", 0, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.TotalElements != 4 || page.TotalPages != 2 || len(page.Content) != 3 {
		t.Errorf("page = %+v", page)
	}
	if page.Content[0].ID != s.q[3].ID {
		t.Errorf("first id = %d, want newest %d", page.Content[0].ID, s.q[3].ID)
	}

	page, err = s.env.questions.Search(ctx, "", "Q2", 0, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if page.TotalElements != 1 || page.Size != defaultPageSize {
		t.Errorf("page = %+v", page)
	}
}

func TestReponseClientService_Submit(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	first, err := s.env.answers.Submit(ctx, s.client.ID, s.form.ID, []AnswerInput{
		{QuestionID: s.q[0].ID, Valeur: "a"},
		{QuestionID: s.q[1].ID, Valeur: "b"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(first) != 2 || first[0].QuestionID != s.q[0].ID || first[1].Valeur != "b" {
		t.Errorf("result = %+v", first)
	}

	// Resubmission updates in place
	second, err := s.env.answers.Submit(ctx, s.client.ID, s.form.ID, []AnswerInput{{QuestionID: s.q[0].ID, Valeur: "changed"}})
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if second[0].ID != first[0].ID || second[0].Valeur != "changed" {
		t.Errorf("resubmission = %+v, want update of %d", second[0], first[0].ID)
	}
	if n := s.env.count(t, "reponses_client"); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	mine, err := s.env.answers.MyResponses(ctx, s.client.ID, s.form.ID)
	if err != nil {
		t.Fatalf("MyResponses() error = %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("my responses = %d, want 2", len(mine))
	}
	if s.env.metrics.SubmittedAnswers != 3 {
		t.Errorf("submitted = %d, want 3", s.env.metrics.SubmittedAnswers)
	}
}

func TestReponseClientService_Submit_Rejections(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userID   int64
		formID   int64
		answers  []AnswerInput
		wantKind error
		wantMsg  string
	}{
		{"No principal", 0, s.form.ID, []AnswerInput{{QuestionID: s.q[0].ID, Valeur: "x"}}, domain.ErrUnauthorized, ""},
		{"Empty payload", s.client.ID, s.form.ID, nil, domain.ErrValidation, "No answers provided"},
		{"Unknown form", s.client.ID, 999, []AnswerInput{{QuestionID: s.q[0].ID}}, domain.ErrNotFound, ""},
		{
			"Foreign question", s.client.ID, s.form.ID,
			[]AnswerInput{{QuestionID: s.q[0].ID, Valeur: "ok"}, {QuestionID: s.q[3].ID, Valeur: "no"}},
			domain.ErrValidation, "not in formulaire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.env.answers.Submit(ctx, tt.userID, tt.formID, tt.answers)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Submit() error = %v, want %v", err, tt.wantKind)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", err.Error(), tt.wantMsg)
			}
		})
	}

	// The valid first item of the rejected submission was rolled back
	if n := s.env.count(t, "reponses_client"); n != 0 {
		t.Errorf("rows = %d, want 0", n)
	}
}

func TestReponseFournisseurService_Upsert(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	answers, err := s.env.answers.Submit(ctx, s.client.ID, s.form.ID, []AnswerInput{
		{QuestionID: s.q[0].ID, Valeur: "a"},
		{QuestionID: s.q[1].ID, Valeur: "b"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	first, err := s.env.reviews.UpsertOne(ctx, s.fournisseur.ID, ReviewInput{ReponseClientID: answers[0].ID, Commentaire: "v1"})
	if err != nil {
		t.Fatalf("UpsertOne() error = %v", err)
	}
	second, err := s.env.reviews.UpsertOne(ctx, s.fournisseur.ID, ReviewInput{ReponseClientID: answers[0].ID, Commentaire: "v2"})
	if err != nil {
		t.Fatalf("second UpsertOne() error = %v", err)
	}
	if second.ID != first.ID || second.Commentaire != "v2" {
		t.Errorf("second = %+v, want update of %d", second, first.ID)
	}
	if n := s.env.count(t, "reponses_fournisseur"); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
	if s.env.metrics.SupplierUpserts[OutcomeCreated] != 1 || s.env.metrics.SupplierUpserts[OutcomeUpdated] != 1 {
		t.Errorf("upserts = %v", s.env.metrics.SupplierUpserts)
	}

	if _, err := s.env.reviews.UpsertOne(ctx, s.fournisseur.ID, ReviewInput{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing id error = %v", err)
	}
	if _, err := s.env.reviews.UpsertOne(ctx, s.fournisseur.ID, ReviewInput{ReponseClientID: 999}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown answer error = %v", err)
	}

	views, err := s.env.reviews.ListReviews(ctx, s.form.ID, nil, s.fournisseur.ID)
	if err != nil {
		t.Fatalf("ListReviews() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	commented := 0
	for _, v := range views {
		if v.FournisseurComment != nil {
			commented++
			if *v.FournisseurComment != "v2" {
				t.Errorf("comment = %q, want v2", *v.FournisseurComment)
			}
		}
	}
	if commented != 1 {
		t.Errorf("commented views = %d, want 1", commented)
	}
}

func TestReponseFournisseurService_UpsertBatch_KeepsEarlierItems(t *testing.T) {
	s := newSurveySetup(t)
	ctx := context.Background()

	answers, err := s.env.answers.Submit(ctx, s.client.ID, s.form.ID, []AnswerInput{
		{QuestionID: s.q[0].ID, Valeur: "a"},
		{QuestionID: s.q[1].ID, Valeur: "b"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	done, err := s.env.reviews.UpsertBatch(ctx, s.fournisseur.ID, []ReviewInput{
		{ReponseClientID: answers[0].ID, Commentaire: "first"},
		{ReponseClientID: 999, Commentaire: "missing"},
		{ReponseClientID: answers[1].ID, Commentaire: "never"},
	})
	var itemErr *BatchItemError
	if !errors.As(err, &itemErr) || itemErr.Index != 1 {
		t.Fatalf("error = %v, want failure at index 1", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error kind = %v, want not found", err)
	}
	if len(done) != 1 {
		t.Errorf("committed = %d, want 1", len(done))
	}
	if n := s.env.count(t, "reponses_fournisseur"); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

package dto_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/dto"
)

func TestToProfile(t *testing.T) {
	user := &domain.User{
		ID:        123,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "test@example.com",
		Password:  "$2a$hash",
		Role:      domain.RoleFournisseur,
	}

	profile := dto.ToProfile(user)

	if profile.ID != user.ID {
		t.Errorf("Expected ID %d, got %d", user.ID, profile.ID)
	}
	if profile.Email != user.Email {
		t.Errorf("Expected Email %s, got %s", user.Email, profile.Email)
	}
	if profile.Role != "FOURNISSEUR" {
		t.Errorf("Expected Role FOURNISSEUR, got %s", profile.Role)
	}

	b, err := json.Marshal(profile)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "hash") {
		t.Errorf("profile leaks the password hash: %s", b)
	}
}

func TestToUsers_NeverNil(t *testing.T) {
	b, err := json.Marshal(dto.ToUsers(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[]" {
		t.Errorf("Expected [], got %s", b)
	}
}

func TestToFormulaireDetail(t *testing.T) {
	formID := int64(7)
	detail := &domain.FormulaireDetail{
		Formulaire: domain.Formulaire{ID: formID, Titre: "Satisfaction", DateCreation: time.Unix(0, 0).UTC()},
		Questions: []*domain.Question{
			{ID: 1, Contenu: "Q1", Type: "text", FormulaireID: &formID},
			{ID: 2, Contenu: "Q2", Type: "rating", FormulaireID: &formID},
		},
	}

	b, err := json.Marshal(dto.ToFormulaireDetail(detail))
	if err != nil {
		t.Fatal(err)
	}

	got := string(b)
	if !strings.Contains(got, `"questions":[{"id":1,"contenu":"Q1","type":"text"},{"id":2`) {
		t.Errorf("unexpected detail JSON: %s", got)
	}
	if strings.Contains(got, "formulaireId") {
		t.Errorf("nested questions should not carry formulaireId: %s", got)
	}
}

func TestSubmissionRequestDecoding(t *testing.T) {
	var req dto.SubmissionRequest
	body := `{"answers":[{"questionId":3,"valeur":"oui"},{"questionId":4,"valeur":"5"}]}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	if len(req.Answers) != 2 || req.Answers[0].QuestionID != 3 || req.Answers[1].Valeur != "5" {
		t.Errorf("unexpected decode: %+v", req)
	}
}

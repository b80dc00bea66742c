package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Walehamdi1/QNA/internal/cache"
	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/mocks"
	"github.com/Walehamdi1/QNA/internal/repository"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{FrontendURL: "http://localhost:3000"},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			Issuer:               "qna-test",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			MaxFailedAttempts: 3,
			LockoutDuration:   15 * time.Minute,
			BcryptCost:        bcrypt.MinCost,
		},
		PasswordReset: config.PasswordResetConfig{CodeTTL: 15 * time.Minute},
	}
}

// testEnv wires every service on one in-memory database
type testEnv struct {
	db      *sql.DB
	adapter *repository.Adapter
	conf    *config.Config
	metrics *mocks.MockMetrics
	mail    *mocks.MockEmailSender

	users     *UserService
	auth      *AuthService
	passwords *PasswordService
	forms     *FormulaireService
	questions *QuestionService
	answers   *ReponseClientService
	reviews   *ReponseFournisseurService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.OpenTestSQLite()
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := repository.NewAdapter(db, "sqlite")
	conf := testConfig()
	m := mocks.NewMockMetrics()
	mail := mocks.NewMockEmailSender()
	fc := cache.NewFormCache(time.Minute, m)

	passwords, err := NewPasswordService(a.UserRepository(), a.RefreshTokenStore(), mail, conf, m)
	if err != nil {
		t.Fatalf("password service: %v", err)
	}

	return &testEnv{
		db:        db,
		adapter:   a,
		conf:      conf,
		metrics:   m,
		mail:      mail,
		users:     NewUserService(a.UserRepository(), a.RefreshTokenStore(), fc, conf, m),
		auth:      NewAuthService(a.UserRepository(), a.RefreshTokenStore(), conf, db, m),
		passwords: passwords,
		forms:     NewFormulaireService(a.FormulaireRepository(), a.QuestionRepository(), a.UserRepository(), fc),
		questions: NewQuestionService(db, a.FormulaireRepository(), a.QuestionRepository(), fc, m),
		answers: NewReponseClientService(db, a.FormulaireRepository(), a.QuestionRepository(),
			a.UserRepository(), a.ReponseClientRepository(), m),
		reviews: NewReponseFournisseurService(db, a.FormulaireRepository(), a.ReponseClientRepository(),
			a.UserRepository(), a.ReponseFournisseurRepository(), m),
	}
}

func (e *testEnv) register(t *testing.T, email, password, userType string) *domain.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		FirstName:       "Jean",
		LastName:        "Dupont",
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		UserType:        userType,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return u
}

// questionsOf returns the member ids of a form
func (e *testEnv) questionsOf(t *testing.T, formulaireID int64) []int64 {
	t.Helper()
	ids, err := e.questions.GetQuestionIDsOfFormulaire(context.Background(), formulaireID)
	if err != nil {
		t.Fatalf("question ids: %v", err)
	}
	return ids
}

func (e *testEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := e.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

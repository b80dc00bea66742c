package sqlstore

import (
	"database/sql"

	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

// Factory builds every repository for one dialect / Construit tous les repositories pour un dialecte
type Factory struct {
	Dialect db.Dialect
}

// NewUserRepository creates user repository / Crée le repository utilisateur
func (f Factory) NewUserRepository(database *sql.DB) ports.UserRepository {
	return NewUserRepository(database, f.Dialect)
}

// NewRefreshTokenStore creates refresh token store / Crée le store de refresh tokens
func (f Factory) NewRefreshTokenStore(database *sql.DB) ports.RefreshTokenStore {
	return NewRefreshTokenStore(database, f.Dialect)
}

// NewFormulaireRepository creates form repository / Crée le repository des formulaires
func (f Factory) NewFormulaireRepository(database *sql.DB) ports.FormulaireRepository {
	return NewFormulaireRepository(database, f.Dialect)
}

// NewQuestionRepository creates question repository / Crée le repository des questions
func (f Factory) NewQuestionRepository(database *sql.DB) ports.QuestionRepository {
	return NewQuestionRepository(database, f.Dialect)
}

// NewReponseClientRepository creates client answer repository / Crée le repository des réponses clients
func (f Factory) NewReponseClientRepository(database *sql.DB) ports.ReponseClientRepository {
	return NewReponseClientRepository(database, f.Dialect)
}

// NewReponseFournisseurRepository creates supplier comment repository / Crée le repository des commentaires fournisseurs
func (f Factory) NewReponseFournisseurRepository(database *sql.DB) ports.ReponseFournisseurRepository {
	return NewReponseFournisseurRepository(database, f.Dialect)
}

package repository

import (
	"database/sql"

	"github.com/Walehamdi1/QNA/internal/ports"
)

// DatabaseFactory must be implemented by each database package / Doit être implémenté par chaque package de BD
// Adding a repository here forces every dialect package to provide it.
// Ajouter un repository ici oblige chaque package de dialecte à le fournir.
type DatabaseFactory interface {
	NewUserRepository(db *sql.DB) ports.UserRepository
	NewRefreshTokenStore(db *sql.DB) ports.RefreshTokenStore
	NewFormulaireRepository(db *sql.DB) ports.FormulaireRepository
	NewQuestionRepository(db *sql.DB) ports.QuestionRepository
	NewReponseClientRepository(db *sql.DB) ports.ReponseClientRepository
	NewReponseFournisseurRepository(db *sql.DB) ports.ReponseFournisseurRepository
}

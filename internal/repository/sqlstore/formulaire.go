package sqlstore

import (
	"context"
	"database/sql"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

var _ ports.FormulaireRepository = (*formulaireRepository)(nil)

const formulaireSelect = `SELECT f.id, f.titre, f.date_creation, f.user_id, u.email
	FROM formulaires f LEFT JOIN users u ON u.id = f.user_id`

type formulaireRepository struct {
	conn
}

// NewFormulaireRepository creates form repository / Crée le repository des formulaires
func NewFormulaireRepository(database ports.DBTX, dialect db.Dialect) ports.FormulaireRepository {
	return &formulaireRepository{conn{db: database, d: dialect}}
}

// WithTx returns repository with transaction / Retourne le repository avec transaction
func (r *formulaireRepository) WithTx(dbtx ports.DBTX) ports.FormulaireRepository {
	return &formulaireRepository{r.with(dbtx)}
}

func scanFormulaire(s scanner) (*domain.Formulaire, error) {
	var (
		f          domain.Formulaire
		userID     sql.NullInt64
		ownerEmail sql.NullString
	)
	if err := s.Scan(&f.ID, &f.Titre, &f.DateCreation, &userID, &ownerEmail); err != nil {
		return nil, err
	}
	f.UserID = int64Ptr(userID)
	f.OwnerEmail = stringPtr(ownerEmail)
	return &f, nil
}

// GetByID retrieves form with owner email / Récupère le formulaire avec l'email du propriétaire
func (r *formulaireRepository) GetByID(ctx context.Context, id int64) (*domain.Formulaire, error) {
	f, err := scanFormulaire(r.queryRow(ctx, formulaireSelect+` WHERE f.id = ?`, id))
	if err != nil {
		return nil, r.d.TranslateError(err)
	}
	return f, nil
}

// List retrieves forms newest first / Récupère les formulaires du plus récent au plus ancien
func (r *formulaireRepository) List(ctx context.Context) ([]*domain.Formulaire, error) {
	rows, err := r.query(ctx, formulaireSelect+` ORDER BY f.date_creation DESC, f.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Formulaire
	for rows.Next() {
		f, err := scanFormulaire(rows)
		if err != nil {
			return nil, r.d.TranslateError(err)
		}
		out = append(out, f)
	}
	return out, r.d.TranslateError(rows.Err())
}

// Create inserts form / Insère le formulaire
func (r *formulaireRepository) Create(ctx context.Context, f *domain.Formulaire) (*domain.Formulaire, error) {
	id, err := r.insert(ctx, `INSERT INTO formulaires (titre, date_creation, user_id) VALUES (?, ?, ?)`,
		f.Titre, f.DateCreation.UTC(), nullInt64(f.UserID))
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update saves title and owner / Enregistre le titre et le propriétaire
func (r *formulaireRepository) Update(ctx context.Context, f *domain.Formulaire) error {
	_, err := r.exec(ctx, `UPDATE formulaires SET titre = ?, user_id = ? WHERE id = ?`,
		f.Titre, nullInt64(f.UserID), f.ID)
	return err
}

// Delete removes form and its question tree / Supprime le formulaire et l'arbre de ses questions
func (r *formulaireRepository) Delete(ctx context.Context, id int64) error {
	members := `SELECT id FROM questions WHERE formulaire_id = ?`
	answers := `SELECT id FROM reponses_client WHERE question_id IN (` + members + `)`

	return r.execAll(ctx,
		statement{`DELETE FROM reponses_fournisseur WHERE reponse_client_id IN (` + answers + `)`, []any{id}},
		statement{`DELETE FROM reponses_client WHERE question_id IN (` + members + `)`, []any{id}},
		statement{`DELETE FROM questions WHERE formulaire_id = ?`, []any{id}},
		statement{`DELETE FROM formulaires WHERE id = ?`, []any{id}},
	)
}

package sqlstore

import (
	"context"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

var _ ports.ReponseClientRepository = (*reponseClientRepository)(nil)

const reponseClientColumns = `rc.id, rc.valeur, rc.date_soumission, rc.question_id, rc.user_id`

type reponseClientRepository struct {
	conn
}

// NewReponseClientRepository creates client answer repository / Crée le repository des réponses clients
func NewReponseClientRepository(database ports.DBTX, dialect db.Dialect) ports.ReponseClientRepository {
	return &reponseClientRepository{conn{db: database, d: dialect}}
}

// WithTx returns repository with transaction / Retourne le repository avec transaction
func (r *reponseClientRepository) WithTx(dbtx ports.DBTX) ports.ReponseClientRepository {
	return &reponseClientRepository{r.with(dbtx)}
}

func scanReponseClient(s scanner) (*domain.ReponseClient, error) {
	var rc domain.ReponseClient
	if err := s.Scan(&rc.ID, &rc.Valeur, &rc.DateSoumission, &rc.QuestionID, &rc.UserID); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *reponseClientRepository) one(ctx context.Context, query string, args ...any) (*domain.ReponseClient, error) {
	rc, err := scanReponseClient(r.queryRow(ctx, query, args...))
	if err != nil {
		return nil, r.d.TranslateError(err)
	}
	return rc, nil
}

func (r *reponseClientRepository) many(ctx context.Context, query string, args ...any) ([]*domain.ReponseClient, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ReponseClient
	for rows.Next() {
		rc, err := scanReponseClient(rows)
		if err != nil {
			return nil, r.d.TranslateError(err)
		}
		out = append(out, rc)
	}
	return out, r.d.TranslateError(rows.Err())
}

// GetByID retrieves client answer / Récupère la réponse client
func (r *reponseClientRepository) GetByID(ctx context.Context, id int64) (*domain.ReponseClient, error) {
	return r.one(ctx, `SELECT `+reponseClientColumns+` FROM reponses_client rc WHERE rc.id = ?`, id)
}

// List retrieves all client answers / Récupère toutes les réponses clients
func (r *reponseClientRepository) List(ctx context.Context) ([]*domain.ReponseClient, error) {
	return r.many(ctx, `SELECT `+reponseClientColumns+` FROM reponses_client rc ORDER BY rc.id`)
}

// GetByUserAndQuestion looks up by natural key / Recherche par clé naturelle
func (r *reponseClientRepository) GetByUserAndQuestion(ctx context.Context, userID, questionID int64) (*domain.ReponseClient, error) {
	return r.one(ctx, `SELECT `+reponseClientColumns+` FROM reponses_client rc WHERE rc.user_id = ? AND rc.question_id = ?`,
		userID, questionID)
}

// ListByUserAndFormulaire retrieves a user's answers for a form / Récupère les réponses d'un utilisateur pour un formulaire
func (r *reponseClientRepository) ListByUserAndFormulaire(ctx context.Context, userID, formulaireID int64) ([]*domain.ReponseClient, error) {
	query := `SELECT ` + reponseClientColumns + `
		FROM reponses_client rc JOIN questions q ON q.id = rc.question_id
		WHERE rc.user_id = ? AND q.formulaire_id = ?
		ORDER BY rc.question_id`
	return r.many(ctx, query, userID, formulaireID)
}

// Create inserts client answer / Insère la réponse client
func (r *reponseClientRepository) Create(ctx context.Context, rc *domain.ReponseClient) (*domain.ReponseClient, error) {
	id, err := r.insert(ctx, `INSERT INTO reponses_client (valeur, date_soumission, question_id, user_id) VALUES (?, ?, ?, ?)`,
		rc.Valeur, rc.DateSoumission.UTC(), rc.QuestionID, rc.UserID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateValeur updates value and submission date / Met à jour la valeur et la date de soumission
func (r *reponseClientRepository) UpdateValeur(ctx context.Context, id int64, valeur string, at time.Time) error {
	_, err := r.exec(ctx, `UPDATE reponses_client SET valeur = ?, date_soumission = ? WHERE id = ?`, valeur, at.UTC(), id)
	return err
}

// Delete removes answer and supplier comments on it / Supprime la réponse et ses commentaires
func (r *reponseClientRepository) Delete(ctx context.Context, id int64) error {
	return r.execAll(ctx,
		statement{`DELETE FROM reponses_fournisseur WHERE reponse_client_id = ?`, []any{id}},
		statement{`DELETE FROM reponses_client WHERE id = ?`, []any{id}},
	)
}

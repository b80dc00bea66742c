package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

var _ ports.ReponseFournisseurRepository = (*reponseFournisseurRepository)(nil)

const reponseFournisseurColumns = `id, commentaire, date_reponse, reponse_client_id, user_id`

type reponseFournisseurRepository struct {
	conn
}

// NewReponseFournisseurRepository creates supplier comment repository / Crée le repository des commentaires fournisseurs
func NewReponseFournisseurRepository(database ports.DBTX, dialect db.Dialect) ports.ReponseFournisseurRepository {
	return &reponseFournisseurRepository{conn{db: database, d: dialect}}
}

// WithTx returns repository with transaction / Retourne le repository avec transaction
func (r *reponseFournisseurRepository) WithTx(dbtx ports.DBTX) ports.ReponseFournisseurRepository {
	return &reponseFournisseurRepository{r.with(dbtx)}
}

func scanReponseFournisseur(s scanner) (*domain.ReponseFournisseur, error) {
	var rf domain.ReponseFournisseur
	if err := s.Scan(&rf.ID, &rf.Commentaire, &rf.DateReponse, &rf.ReponseClientID, &rf.UserID); err != nil {
		return nil, err
	}
	return &rf, nil
}

func (r *reponseFournisseurRepository) one(ctx context.Context, query string, args ...any) (*domain.ReponseFournisseur, error) {
	rf, err := scanReponseFournisseur(r.queryRow(ctx, query, args...))
	if err != nil {
		return nil, r.d.TranslateError(err)
	}
	return rf, nil
}

// GetByID retrieves supplier comment / Récupère le commentaire fournisseur
func (r *reponseFournisseurRepository) GetByID(ctx context.Context, id int64) (*domain.ReponseFournisseur, error) {
	return r.one(ctx, `SELECT `+reponseFournisseurColumns+` FROM reponses_fournisseur WHERE id = ?`, id)
}

// GetByReponseClientAndUser looks up by natural key / Recherche par clé naturelle
func (r *reponseFournisseurRepository) GetByReponseClientAndUser(ctx context.Context, reponseClientID, userID int64) (*domain.ReponseFournisseur, error) {
	return r.one(ctx, `SELECT `+reponseFournisseurColumns+` FROM reponses_fournisseur WHERE reponse_client_id = ? AND user_id = ?`,
		reponseClientID, userID)
}

// List retrieves all supplier comments / Récupère tous les commentaires fournisseurs
func (r *reponseFournisseurRepository) List(ctx context.Context) ([]*domain.ReponseFournisseur, error) {
	rows, err := r.query(ctx, `SELECT `+reponseFournisseurColumns+` FROM reponses_fournisseur ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ReponseFournisseur
	for rows.Next() {
		rf, err := scanReponseFournisseur(rows)
		if err != nil {
			return nil, r.d.TranslateError(err)
		}
		out = append(out, rf)
	}
	return out, r.d.TranslateError(rows.Err())
}

// ListAnswerViews joins answers, questions, clients and the supplier's own comment / Joint réponses, questions, clients et le commentaire du fournisseur
func (r *reponseFournisseurRepository) ListAnswerViews(ctx context.Context, formulaireID int64, clientUserID *int64, supplierID int64) ([]*domain.ClientAnswerView, error) {
	query := `SELECT rc.id, q.id, q.contenu, q.type, u.id, u.email, rc.valeur, rc.date_soumission,
			rf.id, rf.commentaire, rf.date_reponse
		FROM reponses_client rc
		JOIN questions q ON q.id = rc.question_id
		JOIN users u ON u.id = rc.user_id
		LEFT JOIN reponses_fournisseur rf ON rf.reponse_client_id = rc.id AND rf.user_id = ?
		WHERE q.formulaire_id = ?`
	args := []any{supplierID, formulaireID}
	if clientUserID != nil {
		query += ` AND rc.user_id = ?`
		args = append(args, *clientUserID)
	}
	query += ` ORDER BY rc.id`

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []*domain.ClientAnswerView{}
	for rows.Next() {
		var (
			v         domain.ClientAnswerView
			rfID      sql.NullInt64
			rfComment sql.NullString
			rfDate    sql.NullTime
		)
		if err := rows.Scan(
			&v.ReponseClientID,
			&v.QuestionID,
			&v.QuestionLabel,
			&v.QuestionType,
			&v.ClientUserID,
			&v.ClientEmail,
			&v.ClientAnswer,
			&v.SubmittedAt,
			&rfID,
			&rfComment,
			&rfDate,
		); err != nil {
			return nil, r.d.TranslateError(err)
		}
		v.FournisseurResponseID = int64Ptr(rfID)
		v.FournisseurComment = stringPtr(rfComment)
		v.FournisseurRespondedAt = timePtr(rfDate)
		views = append(views, &v)
	}
	return views, r.d.TranslateError(rows.Err())
}

// Create inserts supplier comment / Insère le commentaire fournisseur
func (r *reponseFournisseurRepository) Create(ctx context.Context, rf *domain.ReponseFournisseur) (*domain.ReponseFournisseur, error) {
	id, err := r.insert(ctx, `INSERT INTO reponses_fournisseur (commentaire, date_reponse, reponse_client_id, user_id) VALUES (?, ?, ?, ?)`,
		rf.Commentaire, rf.DateReponse.UTC(), rf.ReponseClientID, rf.UserID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateCommentaire updates comment and response date / Met à jour le commentaire et la date
func (r *reponseFournisseurRepository) UpdateCommentaire(ctx context.Context, id int64, commentaire string, at time.Time) error {
	_, err := r.exec(ctx, `UPDATE reponses_fournisseur SET commentaire = ?, date_reponse = ? WHERE id = ?`, commentaire, at.UTC(), id)
	return err
}

// Delete removes supplier comment / Supprime le commentaire fournisseur
func (r *reponseFournisseurRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `DELETE FROM reponses_fournisseur WHERE id = ?`, id)
	return err
}

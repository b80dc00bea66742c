package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

var _ ports.QuestionRepository = (*questionRepository)(nil)

const questionColumns = `id, contenu, type, formulaire_id`

type questionRepository struct {
	conn
}

// NewQuestionRepository creates question repository / Crée le repository des questions
func NewQuestionRepository(database ports.DBTX, dialect db.Dialect) ports.QuestionRepository {
	return &questionRepository{conn{db: database, d: dialect}}
}

// WithTx returns repository with transaction / Retourne le repository avec transaction
func (r *questionRepository) WithTx(dbtx ports.DBTX) ports.QuestionRepository {
	return &questionRepository{r.with(dbtx)}
}

func scanQuestion(s scanner) (*domain.Question, error) {
	var (
		q            domain.Question
		formulaireID sql.NullInt64
	)
	if err := s.Scan(&q.ID, &q.Contenu, &q.Type, &formulaireID); err != nil {
		return nil, err
	}
	q.FormulaireID = int64Ptr(formulaireID)
	return &q, nil
}

func (r *questionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Question, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, r.d.TranslateError(err)
		}
		out = append(out, q)
	}
	return out, r.d.TranslateError(rows.Err())
}

// GetByID retrieves question / Récupère la question
func (r *questionRepository) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	q, err := scanQuestion(r.queryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id))
	if err != nil {
		return nil, r.d.TranslateError(err)
	}
	return q, nil
}

// List retrieves all questions, newest first / Récupère toutes les questions, plus récentes d'abord
func (r *questionRepository) List(ctx context.Context) ([]*domain.Question, error) {
	return r.list(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id DESC`)
}

// Search filters by type and content, paged / Filtre par type et contenu, paginé
func (r *questionRepository) Search(ctx context.Context, filter domain.QuestionFilter) ([]*domain.Question, int, error) {
	var (
		where []string
		args  []any
	)
	if t := strings.TrimSpace(filter.Type); t != "" {
		where = append(where, `LOWER(type) = ?`)
		args = append(args, strings.ToLower(t))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, `LOWER(contenu) LIKE ?`)
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	clause := ""
	if len(where) > 0 {
		clause = ` WHERE ` + strings.Join(where, ` AND `)
	}

	var total int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM questions`+clause, args...).Scan(&total); err != nil {
		return nil, 0, r.d.TranslateError(err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page, err := r.list(ctx, `SELECT `+questionColumns+` FROM questions`+clause+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return page, total, nil
}

// ListByFormulaire retrieves members in ascending ID order / Récupère les membres par ID croissant
func (r *questionRepository) ListByFormulaire(ctx context.Context, formulaireID int64) ([]*domain.Question, error) {
	return r.list(ctx, `SELECT `+questionColumns+` FROM questions WHERE formulaire_id = ? ORDER BY id`, formulaireID)
}

// IDsByFormulaire retrieves member IDs / Récupère les IDs des membres
func (r *questionRepository) IDsByFormulaire(ctx context.Context, formulaireID int64) ([]int64, error) {
	rows, err := r.query(ctx, `SELECT id FROM questions WHERE formulaire_id = ? ORDER BY id`, formulaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, r.d.TranslateError(err)
		}
		ids = append(ids, id)
	}
	return ids, r.d.TranslateError(rows.Err())
}

// FindByIDs retrieves existing questions among ids / Récupère les questions existantes parmi ids
func (r *questionRepository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+questionColumns+` FROM questions WHERE id IN (`+db.Placeholders(len(ids))+`) ORDER BY id`,
		idArgs(ids)...)
}

// ExistsInFormulaire checks membership / Vérifie l'appartenance
func (r *questionRepository) ExistsInFormulaire(ctx context.Context, questionID, formulaireID int64) (bool, error) {
	var count int
	err := r.queryRow(ctx, `SELECT COUNT(*) FROM questions WHERE id = ? AND formulaire_id = ?`, questionID, formulaireID).Scan(&count)
	if err != nil {
		return false, r.d.TranslateError(err)
	}
	return count > 0, nil
}

// Create inserts question / Insère la question
func (r *questionRepository) Create(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	id, err := r.insert(ctx, `INSERT INTO questions (contenu, type, formulaire_id) VALUES (?, ?, ?)`,
		q.Contenu, q.Type, nullInt64(q.FormulaireID))
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update saves content, type and form / Enregistre contenu, type et formulaire
func (r *questionRepository) Update(ctx context.Context, q *domain.Question) error {
	_, err := r.exec(ctx, `UPDATE questions SET contenu = ?, type = ?, formulaire_id = ? WHERE id = ?`,
		q.Contenu, q.Type, nullInt64(q.FormulaireID), q.ID)
	return err
}

// Delete removes question and its responses / Supprime la question et ses réponses
func (r *questionRepository) Delete(ctx context.Context, id int64) error {
	return r.execAll(ctx,
		statement{`DELETE FROM reponses_fournisseur WHERE reponse_client_id IN (SELECT id FROM reponses_client WHERE question_id = ?)`, []any{id}},
		statement{`DELETE FROM reponses_client WHERE question_id = ?`, []any{id}},
		statement{`DELETE FROM questions WHERE id = ?`, []any{id}},
	)
}

// DetachAll detaches every member / Détache tous les membres
func (r *questionRepository) DetachAll(ctx context.Context, formulaireID int64) (int64, error) {
	return r.affected(ctx, `UPDATE questions SET formulaire_id = NULL WHERE formulaire_id = ?`, formulaireID)
}

// DetachExcept detaches members not listed in keep / Détache les membres absents de keep
func (r *questionRepository) DetachExcept(ctx context.Context, formulaireID int64, keep []int64) (int64, error) {
	if len(keep) == 0 {
		return r.DetachAll(ctx, formulaireID)
	}
	query := `UPDATE questions SET formulaire_id = NULL WHERE formulaire_id = ? AND id NOT IN (` + db.Placeholders(len(keep)) + `)`
	return r.affected(ctx, query, append([]any{formulaireID}, idArgs(keep)...)...)
}

// Attach moves ids into the form / Rattache ids au formulaire
func (r *questionRepository) Attach(ctx context.Context, formulaireID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE questions SET formulaire_id = ? WHERE id IN (` + db.Placeholders(len(ids)) + `)`
	return r.affected(ctx, query, append([]any{formulaireID}, idArgs(ids)...)...)
}

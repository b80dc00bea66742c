package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

var _ ports.UserRepository = (*userRepository)(nil)

const userColumns = `id, first_name, last_name, email, password, role, enabled,
	reset_code, reset_code_expires_at, failed_login_attempts, locked_until, created_at, updated_at`

// userRepository implements UserRepository / Implémente UserRepository
type userRepository struct {
	conn
}

// NewUserRepository creates user repository / Crée le repository utilisateur
func NewUserRepository(database ports.DBTX, dialect db.Dialect) ports.UserRepository {
	return &userRepository{conn{db: database, d: dialect}}
}

// WithTx returns repository with transaction / Retourne le repository avec transaction
func (r *userRepository) WithTx(dbtx ports.DBTX) ports.AccountSecurityRepository {
	return &userRepository{r.with(dbtx)}
}

func scanUser(s scanner) (*domain.User, error) {
	var (
		u           domain.User
		resetCode   sql.NullString
		resetExpiry sql.NullTime
		lockedUntil sql.NullTime
	)
	err := s.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Password,
		&u.Role,
		&u.Enabled,
		&resetCode,
		&resetExpiry,
		&u.FailedLoginAttempts,
		&lockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ResetCode = stringPtr(resetCode)
	u.ResetCodeExpiresAt = timePtr(resetExpiry)
	u.LockedUntil = timePtr(lockedUntil)
	return &u, nil
}

// Create inserts new user in database / Insère un nouvel utilisateur dans la BD
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	query := `INSERT INTO users (first_name, last_name, email, password, role, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := r.insert(ctx, query,
		user.FirstName, user.LastName, user.Email, user.Password, string(user.Role), user.Enabled, now, now)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves user by ID / Récupère l'utilisateur par ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, r.d.TranslateError(err)
	}
	return user, nil
}

// GetByEmail retrieves user by email / Récupère l'utilisateur par email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, r.d.TranslateError(err)
	}
	return user, nil
}

// List retrieves all users / Récupère tous les utilisateurs
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, r.d.TranslateError(err)
		}
		users = append(users, user)
	}
	return users, r.d.TranslateError(rows.Err())
}

// CountUsers returns total user count / Retourne le nombre total d'utilisateurs
func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, r.d.TranslateError(err)
	}
	return count, nil
}

// Update saves profile fields / Enregistre les champs du profil
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users
		SET first_name = ?, last_name = ?, email = ?, role = ?, enabled = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.exec(ctx, query,
		user.FirstName, user.LastName, user.Email, string(user.Role), user.Enabled, time.Now().UTC(), user.ID)
	return err
}

// UpdatePassword updates user password / Met à jour le mot de passe
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	_, err := r.exec(ctx, `UPDATE users SET password = ?, updated_at = ? WHERE id = ?`,
		hashedPassword, time.Now().UTC(), userID)
	return err
}

// Delete removes user with forms, responses and tokens / Supprime l'utilisateur avec formulaires, réponses et tokens
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	ownedQuestions := `SELECT q.id FROM questions q JOIN formulaires f ON f.id = q.formulaire_id WHERE f.user_id = ?`
	touchedAnswers := `SELECT id FROM reponses_client WHERE user_id = ? OR question_id IN (` + ownedQuestions + `)`

	return r.execAll(ctx,
		statement{`DELETE FROM reponses_fournisseur WHERE user_id = ? OR reponse_client_id IN (` + touchedAnswers + `)`, []any{id, id, id}},
		statement{`DELETE FROM reponses_client WHERE user_id = ? OR question_id IN (` + ownedQuestions + `)`, []any{id, id}},
		statement{`DELETE FROM questions WHERE formulaire_id IN (SELECT id FROM formulaires WHERE user_id = ?)`, []any{id}},
		statement{`DELETE FROM formulaires WHERE user_id = ?`, []any{id}},
		statement{`DELETE FROM refresh_tokens WHERE user_id = ?`, []any{id}},
		statement{`DELETE FROM users WHERE id = ?`, []any{id}},
	)
}

// IncrementFailedAttempts increments failed login attempts / Incrémente les tentatives échouées
func (r *userRepository) IncrementFailedAttempts(ctx context.Context, userID int64) error {
	_, err := r.exec(ctx, `UPDATE users SET failed_login_attempts = failed_login_attempts + 1 WHERE id = ?`, userID)
	return err
}

// ResetFailedAttempts resets failed login attempts / Réinitialise les tentatives échouées
func (r *userRepository) ResetFailedAttempts(ctx context.Context, userID int64) error {
	_, err := r.exec(ctx, `UPDATE users SET failed_login_attempts = 0, locked_until = NULL WHERE id = ?`, userID)
	return err
}

// LockAccount locks user account / Verrouille le compte utilisateur
func (r *userRepository) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	_, err := r.exec(ctx, `UPDATE users SET locked_until = ? WHERE id = ?`, until.UTC(), userID)
	return err
}

// SetResetCode stores reset code / Stocke le code de réinitialisation
func (r *userRepository) SetResetCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	n, err := r.affected(ctx, `UPDATE users SET reset_code = ?, reset_code_expires_at = ?, updated_at = ? WHERE email = ?`,
		code, expiresAt.UTC(), time.Now().UTC(), email)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNoRecord
	}
	return nil
}

// ResetPasswordWithCode consumes the code while storing the new hash / Consomme le code en stockant le nouveau hash
func (r *userRepository) ResetPasswordWithCode(ctx context.Context, userID int64, code, hashedPassword string) error {
	query := `UPDATE users
		SET password = ?, reset_code = NULL, reset_code_expires_at = NULL, updated_at = ?
		WHERE id = ? AND reset_code = ?`
	n, err := r.affected(ctx, query, hashedPassword, time.Now().UTC(), userID, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNoRecord
	}
	return nil
}

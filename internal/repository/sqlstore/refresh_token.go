package sqlstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository/db"
)

var _ ports.RefreshTokenStore = (*refreshTokenStore)(nil)

// refreshTokenStore keeps only SHA-256 hashes of refresh tokens / Ne conserve que les hash SHA-256 des tokens
type refreshTokenStore struct {
	conn
}

// NewRefreshTokenStore creates token store / Crée le magasin de tokens
func NewRefreshTokenStore(database ports.DBTX, dialect db.Dialect) ports.RefreshTokenStore {
	return &refreshTokenStore{conn{db: database, d: dialect}}
}

// WithTx returns store with transaction / Retourne le magasin avec transaction
func (s *refreshTokenStore) WithTx(dbtx ports.DBTX) ports.RefreshTokenStore {
	return &refreshTokenStore{s.with(dbtx)}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Save stores hashed refresh token / Stocke le token haché
func (s *refreshTokenStore) Save(ctx context.Context, t *domain.RefreshToken) error {
	if t == nil {
		return errors.New("the refresh token is null")
	}

	query := `INSERT INTO refresh_tokens (token, user_id, issue_at, expires_at, is_revoked, ip_hash, ua_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.exec(ctx, query,
		hashToken(t.Token), t.UserID, t.IssueAt.UTC(), t.ExpiresAt.UTC(), t.IsRevoked, t.IPHash, t.UAHash)
	return err
}

// Get retrieves refresh token by its clear value / Récupère le token par sa valeur en clair
func (s *refreshTokenStore) Get(ctx context.Context, tokenString string) (*domain.RefreshToken, error) {
	query := `SELECT token, user_id, issue_at, expires_at, is_revoked, ip_hash, ua_hash
		FROM refresh_tokens WHERE token = ?`

	var t domain.RefreshToken
	err := s.queryRow(ctx, query, hashToken(tokenString)).Scan(
		&t.Token,
		&t.UserID,
		&t.IssueAt,
		&t.ExpiresAt,
		&t.IsRevoked,
		&t.IPHash,
		&t.UAHash,
	)
	if err != nil {
		return nil, s.d.TranslateError(err)
	}
	return &t, nil
}

// Revoke marks token as revoked / Marque le token comme révoqué
func (s *refreshTokenStore) Revoke(ctx context.Context, tokenString string) error {
	n, err := s.affected(ctx, `UPDATE refresh_tokens SET is_revoked = ? WHERE token = ?`, true, hashToken(tokenString))
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNoRecord
	}
	return nil
}

// RevokeAllForUser revokes all user tokens / Révoque tous les tokens de l'utilisateur
func (s *refreshTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := s.exec(ctx, `UPDATE refresh_tokens SET is_revoked = ? WHERE user_id = ?`, true, userID)
	return err
}

// PurgeExpired deletes tokens expired before the given time / Supprime les tokens expirés
func (s *refreshTokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.affected(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, before.UTC())
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
	"github.com/Walehamdi1/QNA/internal/repository"
	"github.com/Walehamdi1/QNA/internal/service/auth"
)

// AuthService handles authentication operations / Gère les opérations d'authentification
type AuthService struct {
	userReader   ports.UserReader
	security     ports.AccountSecurityRepository
	refreshStore ports.RefreshTokenStore
	conf         *config.Config
	db           ports.TxBeginner
	userLocks    map[int64]*lockEntry
	mapMutex     sync.Mutex
	metrics      AuthMetricsRecorder
}

// AuthMetricsRecorder records auth metrics / Enregistre les métriques d'authentification
type AuthMetricsRecorder interface {
	RecordAccountLockout()
	RecordLoginAttempt(status string)
	RecordTokenRefresh(status string)
}

// LoginResult is returned on successful authentication / Résultat d'une authentification réussie
type LoginResult struct {
	User   *domain.User
	Tokens *auth.TokenPair
}

// NewAuthService creates authentication service instance / Crée une instance de service d'authentification
func NewAuthService(
	repo ports.UserRepository,
	refreshStore ports.RefreshTokenStore,
	conf *config.Config,
	db ports.TxBeginner,
	metrics AuthMetricsRecorder,
) *AuthService {
	return &AuthService{
		userReader:   repo,
		security:     repo,
		refreshStore: refreshStore,
		conf:         conf,
		db:           db,
		userLocks:    make(map[int64]*lockEntry),
		metrics:      metrics,
	}
}

// tokenOptions builds issuance options from config / Construit les options d'émission depuis la config
func (s *AuthService) tokenOptions() auth.Options {
	return auth.Options{
		Secret:     s.conf.Auth.JWTSecret,
		Issuer:     s.conf.Auth.Issuer,
		AccessTTL:  s.conf.Auth.AccessTokenDuration,
		RefreshTTL: s.conf.Auth.RefreshTokenDuration,
	}
}

// getUserLock retrieves or creates user-specific mutex / Récupère ou crée un mutex utilisateur
func (s *AuthService) getUserLock(userID int64) *sync.Mutex {
	s.mapMutex.Lock()
	defer s.mapMutex.Unlock()

	entry, exists := s.userLocks[userID]
	if !exists {
		entry = &lockEntry{mu: &sync.Mutex{}}
		s.userLocks[userID] = entry
	}
	entry.lastUsed = time.Now()

	return entry.mu
}

// CleanupInactiveLocks removes locks unused for idle until ctx is done / Nettoie les locks inutilisés jusqu'à l'arrêt
func (s *AuthService) CleanupInactiveLocks(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pruneLocks(time.Now(), idle)
		}
	}
}

func (s *AuthService) pruneLocks(now time.Time, idle time.Duration) int {
	s.mapMutex.Lock()
	defer s.mapMutex.Unlock()

	removed := 0
	for userID, entry := range s.userLocks {
		if now.Sub(entry.lastUsed) > idle {
			delete(s.userLocks, userID)
			removed++
		}
	}
	return removed
}

func lockedError(d time.Duration) error {
	return domain.NewError(domain.ErrUnauthorized,
		"Account locked due to multiple failed login attempts. Try again in %s", formatLockoutDuration(d))
}

// Login authenticates user and generates tokens / Authentifie l'utilisateur et génère les tokens
func (s *AuthService) Login(ctx context.Context, email, password, ipHash, uaHash string) (*LoginResult, error) {
	user, err := s.userReader.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNoRecord) {
			return nil, internal(ctx, "failed to load user for login", err)
		}
		// Same cost as a real compare so timing does not reveal unknown emails
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.metrics.RecordLoginAttempt("failure")
		return nil, ErrInvalidCredentials
	}

	if user.IsLocked() {
		s.metrics.RecordLoginAttempt("locked")
		return nil, lockedError(time.Until(*user.LockedUntil))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.metrics.RecordLoginAttempt("failure")
		return nil, s.recordFailure(ctx, user)
	}

	if !user.Enabled {
		s.metrics.RecordLoginAttempt("disabled")
		return nil, ErrAccountDisabled
	}

	userLock := s.getUserLock(user.ID)
	userLock.Lock()
	defer userLock.Unlock()

	var tokens *auth.TokenPair
	err = inTx(ctx, s.db, func(tx ports.DBTX) error {
		txRefreshStore := s.refreshStore.WithTx(tx)

		// One live session per user / Une seule session active par utilisateur
		if err := txRefreshStore.RevokeAllForUser(ctx, user.ID); err != nil {
			return err
		}

		tokens, err = s.issue(ctx, txRefreshStore, user, ipHash, uaHash)
		if err != nil {
			return err
		}

		return s.security.WithTx(tx).ResetFailedAttempts(ctx, user.ID)
	})
	if err != nil {
		return nil, internal(ctx, "failed to complete login", err, "user_id", user.ID)
	}

	s.metrics.RecordLoginAttempt("success")
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// dummyHash is compared against when the email is unknown / Comparé quand l'email est inconnu
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoO5sJhZpUlyGeILsNzxhvoDMm9C/fiyDK")

// recordFailure increments the counter and locks at the threshold / Incrémente le compteur et verrouille au seuil
func (s *AuthService) recordFailure(ctx context.Context, user *domain.User) error {
	if user.FailedLoginAttempts+1 >= s.conf.Security.MaxFailedAttempts {
		lockedUntil := time.Now().Add(s.conf.Security.LockoutDuration)
		if err := s.security.LockAccount(ctx, user.ID, lockedUntil); err != nil {
			slog.ErrorContext(ctx, "failed to lock account", "user_id", user.ID, "err", err)
		}
		s.metrics.RecordAccountLockout()
		slog.WarnContext(ctx, "account locked", "user_id", user.ID, "until", lockedUntil)
		return lockedError(s.conf.Security.LockoutDuration)
	}

	if err := s.security.IncrementFailedAttempts(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to record failed login attempt", "user_id", user.ID, "err", err)
	}
	return ErrInvalidCredentials
}

// issue signs a token pair and stores the bound refresh token / Signe une paire et stocke le refresh token lié
func (s *AuthService) issue(ctx context.Context, store ports.RefreshTokenStore, user *domain.User, ipHash, uaHash string) (*auth.TokenPair, error) {
	tokens, err := auth.GenerateTokenPair(auth.Identity{
		UserID: user.ID,
		Role:   user.Role.String(),
		Email:  user.Email,
	}, s.tokenOptions())
	if err != nil {
		return nil, err
	}

	err = store.Save(ctx, &domain.RefreshToken{
		Token:     tokens.RefreshToken,
		UserID:    user.ID,
		IssueAt:   time.Now(),
		ExpiresAt: tokens.RefreshExpiresAt,
		IPHash:    ipHash,
		UAHash:    uaHash,
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// RefreshToken validates and rotates refresh token / Valide et renouvelle le refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken, ipHash, uaHash string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	tokenRecord, err := s.refreshStore.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNoRecord) {
			s.metrics.RecordTokenRefresh("invalid")
			return nil, ErrInvalidToken
		}
		return nil, internal(ctx, "failed to load refresh token", err)
	}

	if tokenRecord.IsRevoked {
		s.metrics.RecordTokenRefresh("invalid")
		return nil, domain.NewError(domain.ErrUnauthorized, "Revoked refresh token")
	}

	if tokenRecord.IsTokenExpired() {
		s.metrics.RecordTokenRefresh("expired")
		return nil, domain.NewError(domain.ErrUnauthorized, "Expired refresh token")
	}

	// Client binding: IP and User-Agent hashes must match / Liaison client : hash IP et User-Agent
	if tokenRecord.IPHash != ipHash || tokenRecord.UAHash != uaHash {
		slog.WarnContext(ctx, "refresh token binding validation failed", "user_id", tokenRecord.UserID)
		s.metrics.RecordTokenRefresh("binding_failure")
		return nil, domain.NewError(domain.ErrUnauthorized, "Refresh token binding validation failed")
	}

	user, err := s.userReader.GetByID(ctx, tokenRecord.UserID)
	if err != nil {
		return nil, translate(err, "User", tokenRecord.UserID)
	}
	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	userLock := s.getUserLock(user.ID)
	userLock.Lock()
	defer userLock.Unlock()

	var tokens *auth.TokenPair
	err = inTx(ctx, s.db, func(tx ports.DBTX) error {
		txRefreshStore := s.refreshStore.WithTx(tx)
		if err := txRefreshStore.Revoke(ctx, refreshToken); err != nil {
			return err
		}
		tokens, err = s.issue(ctx, txRefreshStore, user, ipHash, uaHash)
		return err
	})
	if err != nil {
		return nil, internal(ctx, "failed to rotate refresh token", err, "user_id", user.ID)
	}

	s.metrics.RecordTokenRefresh("success")
	return tokens, nil
}

// Logout revokes the given refresh token; unknown tokens are ignored / Révoque le refresh token, inconnu ignoré
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refreshStore.Revoke(ctx, refreshToken); err != nil && !errors.Is(err, repository.ErrNoRecord) {
		return internal(ctx, "failed to revoke refresh token", err)
	}
	return nil
}

// RevokeAllTokens revokes all refresh tokens for a user / Révoque tous les refresh tokens d'un utilisateur
func (s *AuthService) RevokeAllTokens(ctx context.Context, userID int64) error {
	lock := s.getUserLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.refreshStore.RevokeAllForUser(ctx, userID); err != nil {
		return internal(ctx, "failed to revoke tokens", err, "user_id", userID)
	}

	slog.InfoContext(ctx, "all refresh tokens revoked", "user_id", userID)
	return nil
}

// ValidateAccessToken parses an access token / Analyse un token d'accès
func (s *AuthService) ValidateAccessToken(token string) (*auth.CustomClaims, error) {
	claims, err := auth.ValidateJWT(token, s.conf.Auth.JWTSecret, s.conf.Auth.Issuer)
	if err != nil {
		return nil, domain.NewError(domain.ErrUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

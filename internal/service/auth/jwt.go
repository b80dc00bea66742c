// Package auth signs and validates the HS256 access tokens and generates
// opaque refresh tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrWeakKey is returned for signing keys shorter than 32 bytes / Clé de signature trop courte
var ErrWeakKey = errors.New("JWT key too weak")

// CustomClaims extends JWT claims with role and email / Étend les claims JWT avec le rôle et l'email
type CustomClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role"`
	Email string `json:"email"`
}

// UserID parses the subject as user ID / Convertit le sujet en ID utilisateur
func (c *CustomClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return id, nil
}

// Identity is what an access token asserts / Ce qu'affirme un token d'accès
type Identity struct {
	UserID int64
	Role   string
	Email  string
}

// Options configures token issuance / Configure l'émission des tokens
type Options struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenPair represents access and refresh tokens / Représente les tokens d'accès et de rafraîchissement
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
}

// GenerateTokenPair creates access and refresh tokens / Crée les tokens d'accès et de rafraîchissement
func GenerateTokenPair(id Identity, opts Options) (*TokenPair, error) {
	if len(opts.Secret) < 32 {
		return nil, ErrWeakKey
	}

	now := time.Now()
	expiresAt := now.Add(opts.AccessTTL)
	accessClaims := &CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(id.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    opts.Issuer,
		},
		Role:  id.Role,
		Email: id.Email,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(opts.Secret))
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateSecureToken()
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessTokenString,
		RefreshToken:     refreshToken,
		ExpiresAt:        expiresAt,
		RefreshExpiresAt: now.Add(opts.RefreshTTL),
	}, nil
}

// generateSecureToken generates secure random token / Génère un token aléatoire sécurisé
func generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// ValidateJWT validates JWT token / Valide le token JWT
func ValidateJWT(tokenStr, jwtKey, issuer string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing algorithm: %v", token.Header["alg"])
		}
		return []byte(jwtKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}

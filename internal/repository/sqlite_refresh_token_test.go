package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
)

func newRefreshToken(value string, userID int64, expiresAt time.Time) *domain.RefreshToken {
	return &domain.RefreshToken{
		Token:     value,
		UserID:    userID,
		IssueAt:   time.Now(),
		ExpiresAt: expiresAt,
		IPHash:    "ip-hash",
		UAHash:    "ua-hash",
	}
}

func TestRefreshTokenStore_SaveAndGet(t *testing.T) {
	database := setupTestDB(t)
	store := NewSQLiteRefreshTokenStore(database)
	ctx := context.Background()

	if err := store.Save(ctx, newRefreshToken("clear-token", 1, time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	var stored string
	if err := database.QueryRow("SELECT token FROM refresh_tokens").Scan(&stored); err != nil {
		t.Fatalf("Failed to read stored token: %v", err)
	}
	if stored == "clear-token" || len(stored) != 64 {
		t.Errorf("Expected SHA-256 hex hash to be stored, got %q", stored)
	}

	got, err := store.Get(ctx, "clear-token")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.UserID != 1 || !got.IsTokenValid() {
		t.Errorf("Unexpected token: %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord, got %v", err)
	}

	if err := store.Save(ctx, nil); err == nil {
		t.Error("Expected error when saving nil token")
	}
}

func TestRefreshTokenStore_Revoke(t *testing.T) {
	store := NewSQLiteRefreshTokenStore(setupTestDB(t))
	ctx := context.Background()

	_ = store.Save(ctx, newRefreshToken("a", 1, time.Now().Add(time.Hour)))
	_ = store.Save(ctx, newRefreshToken("b", 1, time.Now().Add(time.Hour)))
	_ = store.Save(ctx, newRefreshToken("c", 2, time.Now().Add(time.Hour)))

	if err := store.Revoke(ctx, "a"); err != nil {
		t.Fatalf("Revoke() error: %v", err)
	}
	if err := store.Revoke(ctx, "missing"); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord for unknown token, got %v", err)
	}

	got, _ := store.Get(ctx, "a")
	if !got.IsRevoked {
		t.Error("Expected token a to be revoked")
	}

	if err := store.RevokeAllForUser(ctx, 1); err != nil {
		t.Fatalf("RevokeAllForUser() error: %v", err)
	}
	got, _ = store.Get(ctx, "b")
	if !got.IsRevoked {
		t.Error("Expected token b to be revoked")
	}
	got, _ = store.Get(ctx, "c")
	if got.IsRevoked {
		t.Error("Token of another user should stay valid")
	}
}

func TestRefreshTokenStore_PurgeExpired(t *testing.T) {
	store := NewSQLiteRefreshTokenStore(setupTestDB(t))
	ctx := context.Background()

	_ = store.Save(ctx, newRefreshToken("expired", 1, time.Now().Add(-time.Hour)))
	_ = store.Save(ctx, newRefreshToken("valid", 1, time.Now().Add(time.Hour)))

	n, err := store.PurgeExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("PurgeExpired() error: %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeExpired() removed %d, want 1", n)
	}
	if _, err := store.Get(ctx, "valid"); err != nil {
		t.Errorf("Valid token should survive purge: %v", err)
	}
}

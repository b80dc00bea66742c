package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/Walehamdi1/QNA/internal/domain"
)

const (
	minPasswordLength = 6
	// bcrypt ignores bytes past 72
	maxPasswordBytes = 72

	resetCodeMin   = 100000
	resetCodeRange = 900000
)

// validatePassword checks length bounds / Vérifie les bornes de longueur
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.NewValidationError("Password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return domain.NewValidationError("Password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// isValidEmail validates an email address format.
// It checks:
//   - Valid RFC 5322 format using net/mail.ParseAddress
//   - Maximum length of 254 characters (RFC 5321)
//   - A bare address, without display name
func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}

	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// normalizeEmail trims and lower-cases / Supprime les espaces et met en minuscules
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateResetCode draws a uniform code in [100000, 999999] / Tire un code uniforme dans [100000, 999999]
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(resetCodeRange))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+resetCodeMin), nil
}

// lockEntry tracks a user-specific mutex and its last access time for cleanup.
type lockEntry struct {
	mu       *sync.Mutex
	lastUsed time.Time
}

// formatLockoutDuration formats a duration into a human-readable string.
// Examples: "1 minute", "15 minutes", "45 seconds"
func formatLockoutDuration(d time.Duration) string {
	if d < time.Minute {
		seconds := int(d.Seconds())
		if seconds == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}

	minutes := int(d.Round(time.Minute).Minutes())
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

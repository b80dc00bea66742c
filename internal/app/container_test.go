package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Walehamdi1/QNA/internal/app"
	"github.com/Walehamdi1/QNA/internal/config"
	"github.com/Walehamdi1/QNA/internal/mocks"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			DSN:  filepath.Join(dir, "qna.db") + "?_pragma=foreign_keys(1)",
		},
		Backup: config.BackupConfig{Path: filepath.Join(dir, "backups")},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			Issuer:               "qna-test",
			AccessTokenDuration:  time.Minute,
			RefreshTokenDuration: time.Hour,
		},
		Security: config.SecurityConfig{
			MaxFailedAttempts: 5,
			LockoutDuration:   time.Minute,
			BcryptCost:        4,
		},
		PasswordReset: config.PasswordResetConfig{CodeTTL: 15 * time.Minute},
		SMTP:          config.SMTPConfig{Host: "localhost", Port: 1025, From: "test@example.com"},
		Cache:         config.CacheConfig{TTL: time.Minute},
		Seed:          config.SeedConfig{Enabled: true},
	}
}

func TestNewContainer(t *testing.T) {
	cfg := testConfig(t)

	container, err := app.NewContainer(cfg, app.WithEmailSender(mocks.NewMockEmailSender()))
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	assert.NotNil(t, container.DB)
	assert.NotNil(t, container.UserSvc)
	assert.NotNil(t, container.AuthSvc)
	assert.NotNil(t, container.PasswordSvc)
	assert.NotNil(t, container.FormulaireSvc)
	assert.NotNil(t, container.QuestionSvc)
	assert.NotNil(t, container.ReponseSvc)
	assert.NotNil(t, container.ReviewSvc)
	assert.NotNil(t, container.Metrics)
	assert.NoError(t, container.DB.Ping())

	// Embedded migrations applied and default accounts seeded
	n, err := container.UserRepo.CountUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	res, err := container.AuthSvc.Login(context.Background(), "admin@admin.com", "adminadmin", "", "")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", res.User.Role.String())
}

func TestNewContainer_Twice(t *testing.T) {
	// Each container owns its registry
	for i := 0; i < 2; i++ {
		c, err := app.NewContainer(testConfig(t), app.WithEmailSender(mocks.NewMockEmailSender()))
		require.NoError(t, err)
		require.NoError(t, c.Close())
	}
}

func TestContainer_Backup(t *testing.T) {
	cfg := testConfig(t)
	container, err := app.NewContainer(cfg, app.WithEmailSender(mocks.NewMockEmailSender()))
	require.NoError(t, err)
	defer container.Close()

	path, err := container.Backup(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, filepath.Base(path), "qna.db.backup-")
}

func TestContainer_BackupUnsupported(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.DSN = ":memory:"
	container, err := app.NewContainer(cfg, app.WithEmailSender(mocks.NewMockEmailSender()))
	require.NoError(t, err)
	defer container.Close()

	_, err = container.Backup(context.Background())
	assert.ErrorIs(t, err, app.ErrBackupUnsupported)
}

func TestContainer_StartAndClose(t *testing.T) {
	container, err := app.NewContainer(testConfig(t), app.WithEmailSender(mocks.NewMockEmailSender()))
	require.NoError(t, err)

	container.Start()
	assert.NoError(t, container.Close())
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Walehamdi1/QNA/internal/repository/db"
)

const backupTimeFormat = "20060102-150405"

// ErrBackupUnsupported is returned for non-file databases / Retournée pour les bases hors fichier
var ErrBackupUnsupported = errors.New("backup requires a file-backed sqlite database")

// sqliteFile extracts the database file from a DSN / Extrait le fichier de base du DSN
func sqliteFile(dsn string) string {
	name := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	if name == ":memory:" {
		return ""
	}
	return name
}

// backupName builds the timestamped backup file name / Construit le nom horodaté du backup
func backupName(dbFile string, at time.Time) string {
	return fmt.Sprintf("%s.backup-%s.db", filepath.Base(dbFile), at.Format(backupTimeFormat))
}

// Backup writes a consistent copy with VACUUM INTO and returns its path / Écrit une copie cohérente et retourne son chemin
func (c *Container) Backup(ctx context.Context) (string, error) {
	if db.ParseDatabaseType(c.Config.Database.Type) != db.SQLite {
		return "", ErrBackupUnsupported
	}
	dbFile := sqliteFile(c.Config.Database.DSN)
	if dbFile == "" {
		return "", ErrBackupUnsupported
	}

	if err := os.MkdirAll(c.Config.Backup.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(c.Config.Backup.Path, backupName(dbFile, time.Now()))
	query := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(backupPath, "'", "''"))
	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return "", fmt.Errorf("backup execution failed: %w", err)
	}

	slog.Info("database backup created", "path", backupPath)
	return backupPath, nil
}

// cleanOldBackups removes backups older than the retention / Supprime les backups plus anciens que la rétention
func (c *Container) cleanOldBackups() error {
	if c.Config.Backup.RetentionDays <= 0 {
		return nil
	}
	_, err := pruneBackups(c.Config.Backup.Path, time.Now().AddDate(0, 0, -c.Config.Backup.RetentionDays))
	return err
}

// pruneBackups deletes .backup-*.db files modified before cutoff / Supprime les fichiers .backup-*.db antérieurs à cutoff
func pruneBackups(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), ".backup-") || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Warn("failed to stat backup", "file", entry.Name(), "err", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			slog.Warn("failed to delete old backup", "file", entry.Name(), "err", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		slog.Info("old backups removed", "count", deleted)
	}
	return deleted, nil
}

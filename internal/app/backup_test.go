package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteFile(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"qna.db?_pragma=foreign_keys(1)", "qna.db"},
		{"file:data/qna.db", "data/qna.db"},
		{":memory:", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteFile(tt.dsn))
		})
	}
}

func TestBackupNameFormat(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	name := backupName("/var/lib/qna/qna.db", at)

	assert.Equal(t, "qna.db.backup-20260304-050607.db", name)
	assert.True(t, strings.HasSuffix(name, ".db"))
}

func TestPruneBackups(t *testing.T) {
	dir := t.TempDir()
	cutoff := time.Now().AddDate(0, 0, -7)

	old := filepath.Join(dir, "qna.db.backup-20200101-000000.db")
	recent := filepath.Join(dir, "qna.db.backup-20990101-000000.db")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, f := range []string{old, recent, unrelated} {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	}
	oldTime := cutoff.Add(-24 * time.Hour)
	require.NoError(t, os.Chtimes(old, oldTime, oldTime))
	require.NoError(t, os.Chtimes(unrelated, oldTime, oldTime))

	n, err := pruneBackups(dir, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, unrelated)
}

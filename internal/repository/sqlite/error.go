package sqlite

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Walehamdi1/QNA/internal/repository/db"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// handleError translates DB errors to typed errors / Traduit les erreurs DB en erreurs typées
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return db.ErrNoRecord
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return db.ErrDup
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return db.ErrForeignKeyViolation
		case sqlite3.SQLITE_BUSY:
			slog.Warn("sqlite busy", "error", liteErr.Error())
			return db.ErrBusy
		case sqlite3.SQLITE_LOCKED:
			slog.Warn("sqlite locked", "error", liteErr.Error())
			return db.ErrLocked
		}
		slog.Debug("unmapped sqlite error", "code", liteErr.Code(), "error", liteErr.Error())
	}
	return err
}

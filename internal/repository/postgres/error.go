package postgres

import (
	"database/sql"
	"errors"

	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/lib/pq"
)

// handleError translates PostgreSQL errors to typed errors / Traduit les erreurs PostgreSQL en erreurs typées
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return db.ErrNoRecord
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return db.ErrDup
		case "23503": // foreign_key_violation
			return db.ErrForeignKeyViolation
		case "55P03": // lock_not_available
			return db.ErrLocked
		}
	}
	return err
}

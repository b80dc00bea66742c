package mysql

import (
	"database/sql"
	"errors"

	"github.com/Walehamdi1/QNA/internal/repository/db"
	"github.com/go-sql-driver/mysql"
)

// handleError translates MySQL errors to typed errors / Traduit les erreurs MySQL en erreurs typées
func handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return db.ErrNoRecord
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // ER_DUP_ENTRY
			return db.ErrDup
		case 1451, 1452: // ER_ROW_IS_REFERENCED_2, ER_NO_REFERENCED_ROW_2
			return db.ErrForeignKeyViolation
		case 1205, 1213: // lock wait timeout, deadlock
			return db.ErrLocked
		}
	}
	return err
}

package repository

import "github.com/Walehamdi1/QNA/internal/repository/db"

// Re-export common errors so services need a single import / Réexporte les erreurs communes
var (
	ErrNoRecord            = db.ErrNoRecord
	ErrDup                 = db.ErrDup
	ErrForeignKeyViolation = db.ErrForeignKeyViolation
	ErrBusy                = db.ErrBusy
	ErrLocked              = db.ErrLocked
)

package db

import "errors"

// Common database errors shared by every dialect / Erreurs BD communes à tous les dialectes
var (
	ErrNoRecord            = errors.New("no matching record found")
	ErrDup                 = errors.New("record already exists")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
	ErrBusy                = errors.New("database is busy")
	ErrLocked              = errors.New("database is locked")
)

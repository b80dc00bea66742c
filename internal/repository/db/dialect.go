package db

import (
	"strconv"
	"strings"
)

// Dialect hides the SQL differences between supported engines / Masque les différences SQL entre moteurs
type Dialect interface {
	// Type returns the engine / Retourne le moteur
	Type() DatabaseType
	// Rebind rewrites ? placeholders for the engine / Réécrit les placeholders ? pour le moteur
	Rebind(query string) string
	// TranslateError maps driver errors to package errors / Traduit les erreurs du driver
	TranslateError(err error) error
	// UseReturning tells whether inserts read the id with RETURNING / Indique si l'insert lit l'id via RETURNING
	UseReturning() bool
}

// RebindDollar rewrites ? into $1, $2, ... / Réécrit ? en $1, $2, ...
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Placeholders returns "?, ?, ?" for n values / Retourne "?, ?, ?" pour n valeurs
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

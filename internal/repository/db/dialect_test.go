package db

import "testing"

func TestRebindDollar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM users WHERE id = ?", "SELECT * FROM users WHERE id = $1"},
		{"UPDATE q SET a = ?, b = ? WHERE id IN (?, ?)", "UPDATE q SET a = $1, b = $2 WHERE id IN ($3, $4)"},
		{"SELECT '?' FROM t WHERE x = ?", "SELECT '?' FROM t WHERE x = $1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := RebindDollar(tt.in); got != tt.want {
				t.Errorf("RebindDollar(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}

	for _, tt := range tests {
		if got := Placeholders(tt.n); got != tt.want {
			t.Errorf("Placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDatabaseType_IsValid(t *testing.T) {
	for _, dt := range []DatabaseType{SQLite, MySQL, PostgreSQL} {
		if !dt.IsValid() {
			t.Errorf("%s should be valid", dt)
		}
	}
	if DatabaseType("oracle").IsValid() {
		t.Error("oracle should not be valid")
	}
}

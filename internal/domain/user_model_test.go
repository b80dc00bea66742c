package domain

import (
	"errors"
	"testing"
	"time"
)

func TestUserRole_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		role  UserRole
		valid bool
	}{
		{"Valid admin role", RoleAdmin, true},
		{"Valid client role", RoleClient, true},
		{"Valid fournisseur role", RoleFournisseur, true},
		{"Invalid role", UserRole("invalid"), false},
		{"Empty role", UserRole(""), false},
		{"Lowercase role", UserRole("admin"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v for role %q", got, tt.valid, tt.role)
			}
		})
	}
}

func TestParseUserType(t *testing.T) {
	tests := []struct {
		in   string
		want UserRole
	}{
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
		{" fournisseur ", RoleFournisseur},
		{"CLIENT", RoleClient},
		{"", RoleClient},
		{"superuser", RoleClient},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseUserType(tt.in); got != tt.want {
				t.Errorf("ParseUserType(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestUser_IsLocked(t *testing.T) {
	now := time.Now()
	future := now.Add(1 * time.Hour)
	past := now.Add(-1 * time.Hour)

	tests := []struct {
		name        string
		lockedUntil *time.Time
		want        bool
	}{
		{"Not locked (nil)", nil, false},
		{"Locked (future time)", &future, true},
		{"Not locked (past time)", &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{LockedUntil: tt.lockedUntil}
			if got := user.IsLocked(); got != tt.want {
				t.Errorf("IsLocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_ResetCode(t *testing.T) {
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	expiry := issued.Add(15 * time.Minute)
	code := "123456"

	user := &User{ResetCode: &code, ResetCodeExpiresAt: &expiry}
	if !user.HasResetCode() {
		t.Fatal("HasResetCode() = false, want true")
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"Right after issuance", issued.Add(time.Second), false},
		{"One second before expiry", expiry.Add(-time.Second), false},
		{"Exactly at expiry", expiry, false},
		{"One nanosecond after expiry", expiry.Add(time.Nanosecond), true},
		{"After expiry", expiry.Add(time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := user.ResetCodeExpired(tt.at); got != tt.want {
				t.Errorf("ResetCodeExpired(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}

	if (&User{}).HasResetCode() {
		t.Error("HasResetCode() on empty user should be false")
	}
}

func TestDefaultPermissionsForRole(t *testing.T) {
	tests := []struct {
		role       UserRole
		permission Permission
		want       bool
	}{
		{RoleAdmin, PermissionFormsWrite, true},
		{RoleAdmin, PermissionUsersManage, true},
		{RoleClient, PermissionResponsesSubmit, true},
		{RoleClient, PermissionReviewsWrite, false},
		{RoleClient, PermissionFormsWrite, false},
		{RoleFournisseur, PermissionReviewsWrite, true},
		{RoleFournisseur, PermissionResponsesSubmit, false},
		{RoleFournisseur, PermissionResponsesRead, true},
		{UserRole("ghost"), PermissionResponsesRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.permission.String(), func(t *testing.T) {
			if got := RoleHasPermission(tt.role, tt.permission); got != tt.want {
				t.Errorf("RoleHasPermission(%v, %v) = %v, want %v", tt.role, tt.permission, got, tt.want)
			}
		})
	}
}

func TestRefreshToken_IsTokenValid(t *testing.T) {
	now := time.Now()
	future := now.Add(1 * time.Hour)
	past := now.Add(-1 * time.Hour)

	tests := []struct {
		name      string
		expiresAt time.Time
		isRevoked bool
		want      bool
	}{
		{"Valid token", future, false, true},
		{"Expired token", past, false, false},
		{"Revoked token", future, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &RefreshToken{ExpiresAt: tt.expiresAt, IsRevoked: tt.isRevoked}
			if got := token.IsTokenValid(); got != tt.want {
				t.Errorf("IsTokenValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	missing := &MissingQuestionsError{IDs: []int64{4, 99}}
	if got := missing.Error(); got != "Some question IDs do not exist: [4, 99]" {
		t.Errorf("MissingQuestionsError.Error() = %q", got)
	}
	if !errors.Is(missing, ErrValidation) {
		t.Error("MissingQuestionsError should match ErrValidation")
	}

	nf := NewNotFoundError("Formulaire", int64(7))
	if !errors.Is(nf, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if got := nf.Error(); got != "Formulaire not found with ID: 7" {
		t.Errorf("NotFoundError.Error() = %q", got)
	}

	v := NewValidationError("Question %d not in formulaire %d", 3, 1)
	if !errors.Is(v, ErrValidation) || v.Error() != "Question 3 not in formulaire 1" {
		t.Errorf("unexpected validation error: %v", v)
	}

	conflict := NewError(ErrConflict, "Email %s already in use", "a@b.c")
	if !errors.Is(conflict, ErrConflict) || errors.Is(conflict, ErrValidation) {
		t.Errorf("KindError should match only its kind: %v", conflict)
	}
	if conflict.Error() != "Email a@b.c already in use" {
		t.Errorf("KindError.Error() = %q", conflict.Error())
	}

	var bm BaseModel
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bm.Touch(ts)
	bm.Touch(ts.Add(time.Hour))
	if !bm.CreatedAt.Equal(ts) || !bm.UpdatedAt.Equal(ts.Add(time.Hour)) {
		t.Errorf("Touch() = %v/%v", bm.CreatedAt, bm.UpdatedAt)
	}
}

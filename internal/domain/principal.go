package domain

// Principal is the authenticated caller / L'appelant authentifié
type Principal struct {
	UserID int64
	Email  string
	Role   UserRole
}

// CanActOn reports whether the caller may manage the given account / Indique si l'appelant peut gérer le compte
func (p Principal) CanActOn(userID int64, email string) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return p.UserID != 0 && (p.UserID == userID || (email != "" && p.Email == email))
}

package domain

import "time"

// BaseModel holds audit timestamps shared by persisted entities / Horodatages d'audit communs aux entités persistées
type BaseModel struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Touch sets UpdatedAt, and CreatedAt when still zero / Met à jour UpdatedAt, et CreatedAt s'il est vide
func (bm *BaseModel) Touch(now time.Time) {
	if bm.CreatedAt.IsZero() {
		bm.CreatedAt = now
	}
	bm.UpdatedAt = now
}

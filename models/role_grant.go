package models

import "time"

// RoleGrant records a role assigned to an email address. It is only used when
// tokens are verified locally; a hosted identity provider keeps roles itself.
type RoleGrant struct {
	Email     string    `json:"email" db:"email" gorm:"type:text;primaryKey"`
	Role      string    `json:"role" db:"role" gorm:"type:text;not null"`
	GrantedBy string    `json:"grantedBy" db:"granted_by" gorm:"type:text"`
	GrantedAt time.Time `json:"grantedAt" db:"granted_at" gorm:"not null"`
}

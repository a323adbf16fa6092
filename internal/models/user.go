package models

import "time"

const (
	RoleUser  = 0
	RoleAdmin = 1
)

// User represents a customer or administrator of the store.
type User struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name               string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email              string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password           string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`
	Phone              string    `json:"phone" gorm:"type:varchar(32)" validate:"required"`
	Address            string    `json:"address" gorm:"type:varchar(255)" validate:"required"`
	Role               int       `json:"role"`
	Preferences        Keywords  `json:"preferences" gorm:"type:text"`
	PreferencesVersion int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user may manage the catalog.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

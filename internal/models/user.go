package models

import "time"

// User represents an account holder. PasswordHash is empty for accounts that
// only sign in through a federated provider.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name         string    `json:"name,omitempty" gorm:"type:varchar(255)"`
	Image        string    `json:"image,omitempty" gorm:"type:text"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"` // No json for security
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasPassword reports whether the user can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Identity projects the user onto the fields carried by a session.
func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Image: u.Image,
	}
}

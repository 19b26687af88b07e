package models

import "time"

// Account links a user to an identity at an external provider.
type Account struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	Provider          string    `json:"provider" gorm:"type:varchar(64);not null;uniqueIndex:idx_provider_account"`
	ProviderAccountID string    `json:"providerAccountId" gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_account"`
	CreatedAt         time.Time `json:"createdAt"`

	User User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

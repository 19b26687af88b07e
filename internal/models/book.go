package models

import "time"

// Genres lists the accepted book genres.
var Genres = []string{
	"Fiction",
	"Non-Fiction",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Fantasy",
	"Biography",
	"History",
	"Self-Help",
	"Technology",
	"Other",
}

// Book is a catalog entry owned by exactly one user.
type Book struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Author    string    `json:"author" gorm:"type:varchar(255);not null"`
	Genre     string    `json:"genre" gorm:"type:varchar(64);not null"`
	ImageData string    `json:"imageData,omitempty" gorm:"type:text"` // data:image/...;base64,...
	ImageType string    `json:"imageType,omitempty" gorm:"type:varchar(100)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	User User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

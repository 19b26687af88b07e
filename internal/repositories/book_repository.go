package repositories

import (
	"context"

	"bookshelf/internal/models"
)

// BookRepository defines the interface for book data access.
type BookRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Book, error)
	// ListByOwner returns the owner's books, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	// DeleteByID removes the book permanently. Returns ErrBookNotFound if no row was removed.
	DeleteByID(ctx context.Context, id uint) error
}

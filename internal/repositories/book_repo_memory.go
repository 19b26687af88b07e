package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"bookshelf/internal/models"
)

// MemoryBookRepository is an in-memory implementation of BookRepository.
type MemoryBookRepository struct {
	books  map[uint]models.Book
	nextID uint
	now    func() time.Time
	mu     sync.RWMutex
}

// NewMemoryBookRepository creates a new instance of MemoryBookRepository.
func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{
		books: make(map[uint]models.Book),
		now:   time.Now,
	}
}

// FindByID returns a book by its ID.
func (r *MemoryBookRepository) FindByID(_ context.Context, id uint) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return &book, nil
}

// ListByOwner returns the owner's books, newest first.
func (r *MemoryBookRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]models.Book, 0)
	for _, b := range r.books {
		if b.UserID == ownerID {
			books = append(books, b)
		}
	}
	sort.Slice(books, func(i, j int) bool {
		if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
			return books[i].CreatedAt.After(books[j].CreatedAt)
		}
		return books[i].ID > books[j].ID
	})
	return books, nil
}

// Create assigns the next ID and creation time, then stores the book.
func (r *MemoryBookRepository) Create(_ context.Context, book *models.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	book.ID = r.nextID
	book.CreatedAt = r.now()
	r.books[book.ID] = *book
	return nil
}

// DeleteByID removes a book by its ID.
func (r *MemoryBookRepository) DeleteByID(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bookshelf/internal/models"
	"bookshelf/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// NewBook holds the fields accepted when creating a book.
type NewBook struct {
	Title     string `validate:"required,max=255"`
	Author    string `validate:"required,max=255"`
	Genre     string `validate:"required,genre"`
	ImageData string
	ImageType string
}

// BookService handles business logic related to books.
type BookService struct {
	repo     repositories.BookRepository
	events   EventPublisher
	log      *zap.Logger
	validate *validator.Validate
}

// NewBookService creates a new BookService.
func NewBookService(repo repositories.BookRepository, events EventPublisher, log *zap.Logger) *BookService {
	if events == nil {
		events = NoopPublisher{}
	}
	v := validator.New()
	genres := make(map[string]struct{}, len(models.Genres))
	for _, g := range models.Genres {
		genres[g] = struct{}{}
	}
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		_, ok := genres[fl.Field().String()]
		return ok
	})

	return &BookService{
		repo:     repo,
		events:   events,
		log:      log,
		validate: v,
	}
}

// List returns the identity's books, newest first.
func (s *BookService) List(ctx context.Context, identity models.Identity) ([]models.Book, error) {
	if identity.IsAnonymous() {
		return nil, ErrAuthentication
	}
	books, err := s.repo.ListByOwner(ctx, identity.ID)
	if err != nil {
		return nil, storeError("fetch books", err)
	}
	return books, nil
}

// Create validates the input and stores a book owned by identity.
func (s *BookService) Create(ctx context.Context, identity models.Identity, in NewBook) (*models.Book, error) {
	if identity.IsAnonymous() {
		return nil, ErrAuthentication
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genre = strings.TrimSpace(in.Genre)
	if err := s.validate.Struct(in); err != nil {
		return nil, bookValidationError(err)
	}

	cover, err := ParseCoverImage(in.ImageData, in.ImageType)
	if err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:  in.Title,
		Author: in.Author,
		Genre:  in.Genre,
		UserID: identity.ID,
	}
	if cover != nil {
		book.ImageData = cover.DataURI
		book.ImageType = cover.MIMEType
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, storeError("create book", err)
	}

	s.publish(ctx, EventBookCreated, BookCreated{
		BookID:     book.ID,
		UserID:     book.UserID,
		Title:      book.Title,
		OccurredAt: time.Now().UTC(),
	})
	return book, nil
}

// Delete removes a book owned by identity. rawID must be a decimal book ID.
// Existence is checked before ownership.
func (s *BookService) Delete(ctx context.Context, identity models.Identity, rawID string) error {
	if identity.IsAnonymous() {
		return ErrAuthentication
	}
	if rawID == "" {
		return invalid("Missing book ID")
	}
	id, err := strconv.ParseUint(rawID, 10, 0)
	if err != nil {
		return invalid("Invalid book ID")
	}
	bookID := uint(id)

	book, err := s.repo.FindByID(ctx, bookID)
	if err != nil && !errors.Is(err, repositories.ErrBookNotFound) {
		return storeError("find book", err)
	}
	if err := Authorize(identity, book).Err(); err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, bookID); err != nil {
		if errors.Is(err, repositories.ErrBookNotFound) {
			return ErrNotFound
		}
		return storeError("delete book", err)
	}

	s.publish(ctx, EventBookDeleted, BookDeleted{
		BookID:     bookID,
		UserID:     identity.ID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *BookService) publish(ctx context.Context, key string, event any) {
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.log.Warn("failed to publish event", zap.String("routing_key", key), zap.Error(err))
	}
}

func bookValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return invalid("Missing required fields")
	}

	fields := make(map[string]string, len(validationErrors))
	message := "Missing required fields"
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			fields[field] = fmt.Sprintf("%s is required", field)
		case "genre":
			fields[field] = fmt.Sprintf("genre must be one of %s", strings.Join(models.Genres, ", "))
			if len(validationErrors) == 1 {
				message = "Invalid genre"
			}
		default:
			fields[field] = fmt.Sprintf("%s failed on the '%s' tag", field, e.Tag())
			if len(validationErrors) == 1 {
				message = "Invalid book fields"
			}
		}
	}
	return &ValidationError{Message: message, Fields: fields}
}

package services_test

import (
	"context"
	"errors"
	"testing"

	"bookshelf/internal/models"
	"bookshelf/internal/repositories"
	"bookshelf/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockBookRepository is a mock implementation of repositories.BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) FindByID(ctx context.Context, id uint) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Book, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) DeleteByID(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	userA = models.Identity{ID: "user-a", Email: "a@x.com"}
	userB = models.Identity{ID: "user-b", Email: "b@x.com"}
	dune  = services.NewBook{Title: "Dune", Author: "Herbert", Genre: "Sci-Fi"}
)

func newBookService(t *testing.T, repo repositories.BookRepository) *services.BookService {
	t.Helper()
	return services.NewBookService(repo, nil, zaptest.NewLogger(t))
}

func TestBookService_OwnerScopedList(t *testing.T) {
	ctx := context.Background()
	bookService := newBookService(t, repositories.NewMemoryBookRepository())

	created, err := bookService.Create(ctx, userA, dune)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, userA.ID, created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	listA, err := bookService.List(ctx, userA)
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, "Dune", listA[0].Title)

	listB, err := bookService.List(ctx, userB)
	require.NoError(t, err)
	assert.Empty(t, listB)
}

func TestBookService_DeleteOwnership(t *testing.T) {
	ctx := context.Background()
	bookService := newBookService(t, repositories.NewMemoryBookRepository())

	created, err := bookService.Create(ctx, userA, dune)
	require.NoError(t, err)
	id := "1"
	require.Equal(t, uint(1), created.ID)

	err = bookService.Delete(ctx, userB, id)
	assert.ErrorIs(t, err, services.ErrForbidden)

	require.NoError(t, bookService.Delete(ctx, userA, id))

	err = bookService.Delete(ctx, userA, id)
	assert.ErrorIs(t, err, services.ErrNotFound)

	// Absence is reported the same way to everyone.
	err = bookService.Delete(ctx, userB, id)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestBookService_DeleteInvalidID(t *testing.T) {
	ctx := context.Background()
	bookService := newBookService(t, new(MockBookRepository))

	for _, raw := range []string{"abc", "12abc", "-1", "1.5", " 1", "99999999999999999999999"} {
		err := bookService.Delete(ctx, userA, raw)
		var ve *services.ValidationError
		require.ErrorAs(t, err, &ve, raw)
		assert.Equal(t, "Invalid book ID", ve.Message)
		assert.NotErrorIs(t, err, services.ErrNotFound)
	}

	err := bookService.Delete(ctx, userA, "")
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Equal(t, "Missing book ID", err.Error())
}

func TestBookService_DeleteRaceLosesToOtherDelete(t *testing.T) {
	mockRepo := new(MockBookRepository)
	mockRepo.On("FindByID", mock.Anything, uint(5)).Return(&models.Book{ID: 5, UserID: userA.ID}, nil).Once()
	mockRepo.On("DeleteByID", mock.Anything, uint(5)).Return(repositories.ErrBookNotFound).Once()

	err := newBookService(t, mockRepo).Delete(context.Background(), userA, "5")
	assert.ErrorIs(t, err, services.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestBookService_StoreFailures(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("pq: connection reset")

	t.Run("list", func(t *testing.T) {
		mockRepo := new(MockBookRepository)
		mockRepo.On("ListByOwner", mock.Anything, userA.ID).Return(nil, dbErr).Once()
		_, err := newBookService(t, mockRepo).List(ctx, userA)
		assert.ErrorIs(t, err, services.ErrStore)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("create", func(t *testing.T) {
		mockRepo := new(MockBookRepository)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).Return(dbErr).Once()
		_, err := newBookService(t, mockRepo).Create(ctx, userA, dune)
		assert.ErrorIs(t, err, services.ErrStore)
	})

	t.Run("delete lookup", func(t *testing.T) {
		mockRepo := new(MockBookRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(nil, dbErr).Once()
		err := newBookService(t, mockRepo).Delete(ctx, userA, "3")
		assert.ErrorIs(t, err, services.ErrStore)
		mockRepo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})
}

func TestBookService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	validImage := dataURI("image/png", pngBytes(32))

	tests := []struct {
		name  string
		input services.NewBook
		field string
	}{
		{"empty title", services.NewBook{Title: "", Author: "Herbert", Genre: "Sci-Fi"}, "title"},
		{"whitespace title", services.NewBook{Title: "   ", Author: "Herbert", Genre: "Sci-Fi"}, "title"},
		{"whitespace author", services.NewBook{Title: "Dune", Author: "\t\n", Genre: "Sci-Fi"}, "author"},
		{"whitespace genre", services.NewBook{Title: "Dune", Author: "Herbert", Genre: "  "}, "genre"},
		{"unknown genre", services.NewBook{Title: "Dune", Author: "Herbert", Genre: "Cookbooks"}, "genre"},
		{
			"valid image does not rescue missing title",
			services.NewBook{Title: " ", Author: "Herbert", Genre: "Sci-Fi", ImageData: validImage, ImageType: "image/png"},
			"title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := new(MockBookRepository)
			book, err := newBookService(t, mockRepo).Create(ctx, userA, tc.input)
			assert.Nil(t, book)

			var ve *services.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tc.field)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestBookService_CreateTrimsAndStoresImage(t *testing.T) {
	ctx := context.Background()
	image := dataURI("image/png", pngBytes(32))

	book, err := newBookService(t, repositories.NewMemoryBookRepository()).Create(ctx, userA, services.NewBook{
		Title:     "  Dune ",
		Author:    " Herbert",
		Genre:     "Sci-Fi ",
		ImageData: image,
		ImageType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Herbert", book.Author)
	assert.Equal(t, "Sci-Fi", book.Genre)
	assert.Equal(t, image, book.ImageData)
	assert.Equal(t, "image/png", book.ImageType)
}

func TestBookService_CreateRejectsBadImage(t *testing.T) {
	_, err := newBookService(t, new(MockBookRepository)).Create(context.Background(), userA, services.NewBook{
		Title: "Dune", Author: "Herbert", Genre: "Sci-Fi",
		ImageData: "data:image/png;base64,AAAA", ImageType: "text/plain",
	})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestBookService_RequiresIdentity(t *testing.T) {
	ctx := context.Background()
	bookService := newBookService(t, new(MockBookRepository))

	_, err := bookService.List(ctx, models.Identity{})
	assert.ErrorIs(t, err, services.ErrAuthentication)
	_, err = bookService.Create(ctx, models.Identity{}, dune)
	assert.ErrorIs(t, err, services.ErrAuthentication)
	assert.ErrorIs(t, bookService.Delete(ctx, models.Identity{}, "1"), services.ErrAuthentication)
}

func TestBookService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, services.EventBookCreated, mock.AnythingOfType("services.BookCreated")).Return(nil).Once()
	pub.On("Publish", mock.Anything, services.EventBookDeleted, mock.MatchedBy(func(e services.BookDeleted) bool {
		return e.BookID == 1 && e.UserID == userA.ID
	})).Return(nil).Once()

	bookService := services.NewBookService(repositories.NewMemoryBookRepository(), pub, zaptest.NewLogger(t))
	_, err := bookService.Create(ctx, userA, dune)
	require.NoError(t, err)
	require.NoError(t, bookService.Delete(ctx, userA, "1"))
	pub.AssertExpectations(t)
}

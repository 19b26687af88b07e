package handlers

import (
	"bookshelf/internal/middleware"
	"bookshelf/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles HTTP requests for the caller's books.
type BookHandler struct {
	service *services.BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.BookService) *BookHandler {
	return &BookHandler{
		service: service,
	}
}

// RegisterRoutes registers the book routes. Every route requires a session.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	books := router.Group("/books", middleware.RequireSession())
	books.Get("", h.HandleListBooks)
	books.Post("", h.HandleCreateBook)
	books.Delete("", h.HandleDeleteBook)
}

// CreateBookRequest represents the request body for adding a book.
type CreateBookRequest struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre"`
	ImageData string `json:"imageData"`
	ImageType string `json:"imageType"`
}

// HandleListBooks returns the caller's books, newest first.
func (h *BookHandler) HandleListBooks(c *fiber.Ctx) error {
	books, err := h.service.List(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(books)
}

// HandleCreateBook adds a book owned by the caller.
func (h *BookHandler) HandleCreateBook(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	book, err := h.service.Create(c.UserContext(), middleware.IdentityFrom(c), services.NewBook{
		Title:     req.Title,
		Author:    req.Author,
		Genre:     req.Genre,
		ImageData: req.ImageData,
		ImageType: req.ImageType,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

// HandleDeleteBook deletes the book named by the id query parameter.
func (h *BookHandler) HandleDeleteBook(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.IdentityFrom(c), c.Query("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Book deleted successfully"})
}

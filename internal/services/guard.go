package services

import "bookshelf/internal/models"

// Decision is the outcome of an ownership check.
type Decision int

const (
	// Allowed means the identity owns the book.
	Allowed Decision = iota
	// Forbidden means the book exists but belongs to someone else.
	Forbidden
	// NotFound means there is no such book. It is decided before ownership.
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Err maps the decision onto the service error taxonomy. Allowed maps to nil.
func (d Decision) Err() error {
	switch d {
	case Allowed:
		return nil
	case NotFound:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}

// Authorize decides whether identity may mutate book. A nil book is NotFound.
func Authorize(identity models.Identity, book *models.Book) Decision {
	if book == nil {
		return NotFound
	}
	if identity.IsAnonymous() || book.UserID != identity.ID {
		return Forbidden
	}
	return Allowed
}

package services

import (
	"context"
	"time"
)

// Routing keys for domain events.
const (
	EventUserRegistered = "user.registered"
	EventBookCreated    = "book.created"
	EventBookDeleted    = "book.deleted"
)

// EventPublisher delivers domain events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// UserRegistered is published after a password sign-up.
type UserRegistered struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BookCreated is published after a book is stored.
type BookCreated struct {
	BookID     uint      `json:"bookId"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurredAt"`
}

// BookDeleted is published after a book is removed.
type BookDeleted struct {
	BookID     uint      `json:"bookId"`
	UserID     string    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

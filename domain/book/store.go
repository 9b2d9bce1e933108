package book

import (
	"context"

	"github.com/helixml/bookshelf/domain/repository"
)

// BookStore defines operations for persisting and retrieving books.
type BookStore interface {
	repository.Store[Book]
	Save(ctx context.Context, b Book) (Book, error)
	SaveAll(ctx context.Context, books []Book) ([]Book, error)

	// FindWithReviews returns one book with its reviews, newest first.
	FindWithReviews(ctx context.Context, id string) (Book, error)
}

// ReviewStore defines operations for persisting and retrieving reviews.
type ReviewStore interface {
	repository.Store[Review]
	Save(ctx context.Context, r Review) (Review, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/bookshelf/domain/book"
	"github.com/helixml/bookshelf/domain/enrichment"
	"github.com/helixml/bookshelf/domain/repository"
	"github.com/helixml/bookshelf/internal/database"
)

// TransactFunc runs fn inside a unit of work. Stores called with the ctx
// handed to fn take part in it.
type TransactFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// ReviewEnricher derives the generated fields of a review.
type ReviewEnricher interface {
	Enrich(ctx context.Context, reviewText string) (enrichment.Result, error)
}

// Books provides catalog queries and review submission.
// Embeds Collection for Find/Get/Count.
type Books struct {
	repository.Collection[book.Book]
	bookStore   book.BookStore
	reviewStore book.ReviewStore
	enricher    ReviewEnricher
	transact    TransactFunc
	logger      *slog.Logger
}

// NewBooks creates a new Books service.
func NewBooks(
	bookStore book.BookStore,
	reviewStore book.ReviewStore,
	enricher ReviewEnricher,
	transact TransactFunc,
	logger *slog.Logger,
) *Books {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if transact == nil {
		transact = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Books{
		Collection:  repository.NewCollection[book.Book](bookStore),
		bookStore:   bookStore,
		reviewStore: reviewStore,
		enricher:    enricher,
		transact:    transact,
		logger:      logger,
	}
}

// List returns every book without reviews, ordered by title.
func (s *Books) List(ctx context.Context) ([]book.Book, error) {
	books, err := s.bookStore.Find(ctx, repository.WithOrderAsc("title"))
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// Book returns one book with its reviews, newest first.
func (s *Books) Book(ctx context.Context, id string) (book.Book, error) {
	if err := validateBookID(id); err != nil {
		return book.Book{}, err
	}
	b, err := s.bookStore.FindWithReviews(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return book.Book{}, NewNotFoundError("Book", id)
		}
		return book.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// CreateReview validates a submission, enriches it and stores the review.
// The book must exist before any generation call is made. When enrichment
// is unavailable nothing is stored and the error matches
// enrichment.ErrServiceUnavailable.
func (s *Books) CreateReview(ctx context.Context, bookID string, in ReviewInput) (book.Review, error) {
	if err := validateBookID(bookID); err != nil {
		return book.Review{}, err
	}
	submission, err := in.Validate()
	if err != nil {
		return book.Review{}, err
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return book.Review{}, err
	}

	result, err := s.enricher.Enrich(ctx, submission.Text())
	if err != nil {
		return book.Review{}, fmt.Errorf("enrich review: %w", err)
	}

	review := book.NewReview(bookID, submission, result)
	var saved book.Review
	err = s.transact(ctx, func(ctx context.Context) error {
		if err := s.ensureBook(ctx, bookID); err != nil {
			return err
		}
		var err error
		saved, err = s.reviewStore.Save(ctx, review)
		return err
	})
	if err != nil {
		return book.Review{}, fmt.Errorf("save review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("book_id", bookID),
		slog.String("review_id", saved.ID()),
		slog.Float64("sentiment_score", saved.SentimentScore()),
	)
	return saved, nil
}

func (s *Books) ensureBook(ctx context.Context, id string) error {
	exists, err := s.bookStore.Exists(ctx, repository.WithID(id))
	if err != nil {
		return fmt.Errorf("check book: %w", err)
	}
	if !exists {
		return NewNotFoundError("Book", id)
	}
	return nil
}

// Seed stores books when the catalog is empty and reports how many were added.
func (s *Books) Seed(ctx context.Context, books []book.Book) (int, error) {
	var added int
	err := s.transact(ctx, func(ctx context.Context) error {
		count, err := s.bookStore.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		saved, err := s.bookStore.SaveAll(ctx, books)
		if err != nil {
			return err
		}
		added = len(saved)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed books: %w", err)
	}
	if added > 0 {
		s.logger.InfoContext(ctx, "seeded book catalog", slog.Int("books", added))
	}
	return added, nil
}

func validateBookID(id string) error {
	if id == "" {
		return NewValidationError("id", "Book ID is required")
	}
	if !book.IsValidID(id) {
		return NewValidationError("id", "Book ID must be a valid UUID")
	}
	return nil
}

// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/helixml/bookshelf/domain/book"
	"github.com/helixml/bookshelf/domain/repository"
	"github.com/helixml/bookshelf/domain/search"
)

// Searchable columns.
var (
	bookSearchFields   = []string{"title", "author", "description"}
	reviewSearchFields = []string{"text", "reviewer_name"}
)

// Search runs case-insensitive substring search over books and reviews.
type Search struct {
	bookStore   book.BookStore
	reviewStore book.ReviewStore
	logger      *slog.Logger
}

// NewSearch creates a new Search service.
func NewSearch(bookStore book.BookStore, reviewStore book.ReviewStore, logger *slog.Logger) *Search {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Search{bookStore: bookStore, reviewStore: reviewStore, logger: logger}
}

// Query searches book titles, authors and descriptions, and review texts
// and reviewer names. A blank query is a validation error.
func (s *Search) Query(ctx context.Context, query string) (search.Result, error) {
	term := search.NormalizeTerm(query)
	if term == "" {
		return search.Result{}, NewValidationError("query", "Search query cannot be empty")
	}

	var books []book.Book
	var reviews []book.Review

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		books, err = s.bookStore.Find(gctx,
			repository.WithContainsAny(term, bookSearchFields...),
			repository.WithOrderAsc("title"),
		)
		if err != nil {
			return fmt.Errorf("search books: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reviews, err = s.reviewStore.Find(gctx,
			repository.WithContainsAny(term, reviewSearchFields...),
			repository.WithPreload("Book"),
			repository.WithNewestFirst(),
		)
		if err != nil {
			return fmt.Errorf("search reviews: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return search.Result{}, err
	}

	bookHits := make([]search.BookMatch, 0, len(books))
	for _, b := range books {
		if m, ok := search.MatchBook(b, term); ok {
			bookHits = append(bookHits, m)
		}
	}
	reviewHits := make([]search.ReviewMatch, 0, len(reviews))
	for _, r := range reviews {
		if m, ok := search.MatchReview(r, term); ok {
			reviewHits = append(reviewHits, m)
		}
	}

	result := search.NewResult(term, bookHits, reviewHits)
	s.logger.DebugContext(ctx, "search completed",
		slog.String("query", term),
		slog.Int("books", len(bookHits)),
		slog.Int("reviews", len(reviewHits)),
	)
	return result, nil
}

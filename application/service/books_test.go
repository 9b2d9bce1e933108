package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/bookshelf/domain/book"
	"github.com/helixml/bookshelf/domain/enrichment"
	"github.com/helixml/bookshelf/domain/repository"
	"github.com/helixml/bookshelf/infrastructure/persistence"
	"github.com/helixml/bookshelf/internal/database"
	"github.com/helixml/bookshelf/internal/testdb"
)

type fakeEnricher struct {
	result enrichment.Result
	err    error
	calls  int
}

func (f *fakeEnricher) Enrich(context.Context, string) (enrichment.Result, error) {
	f.calls++
	return f.result, f.err
}

type booksFixture struct {
	svc      *Books
	reviews  persistence.ReviewStore
	enricher *fakeEnricher
	gatsby   book.Book
}

func newBooksFixture(t *testing.T) booksFixture {
	t.Helper()
	db := testdb.Seeded(t)
	books := persistence.NewBookStore(db)
	reviews := persistence.NewReviewStore(db)
	enricher := &fakeEnricher{
		result: enrichment.NewResult("Warm review", 0.8, []string{"classic"}, enrichment.NewDefaults()),
	}
	transact := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return database.WithTransaction(ctx, db, fn)
	}

	gatsby, err := books.FindOne(context.Background(), repository.WithTitle("The Great Gatsby"))
	require.NoError(t, err)

	return booksFixture{
		svc:      NewBooks(books, reviews, enricher, transact, nil),
		reviews:  reviews,
		enricher: enricher,
		gatsby:   gatsby,
	}
}

func validInput() ReviewInput {
	return ReviewInput{
		ReviewerName: "  Jay  ",
		Text:         "  A shimmering portrait of longing.  ",
		Rating:       5,
	}
}

func TestBooks_ListOrdersByTitle(t *testing.T) {
	f := newBooksFixture(t)

	books, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "1984", books[0].Title())
}

func TestBooks_BookValidatesID(t *testing.T) {
	f := newBooksFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Book ID is required")

	_, err = f.svc.Book(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Book ID must be a valid UUID")
}

func TestBooks_BookNotFound(t *testing.T) {
	f := newBooksFixture(t)

	_, err := f.svc.Book(context.Background(), "6f1c2a52-8d6e-4b8a-9a43-3c3c1f0d9e11")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.EqualError(t, err, "Book not found")
}

func TestBooks_CreateReviewStoresEnrichedReview(t *testing.T) {
	f := newBooksFixture(t)
	ctx := context.Background()

	saved, err := f.svc.CreateReview(ctx, f.gatsby.ID(), validInput())
	require.NoError(t, err)

	assert.True(t, book.IsValidID(saved.ID()))
	assert.Equal(t, "Jay", saved.ReviewerName())
	assert.Equal(t, "A shimmering portrait of longing.", saved.Text())
	assert.Equal(t, 5, saved.Rating())
	assert.Equal(t, "Warm review", saved.Summary())
	assert.Equal(t, []string{"classic"}, saved.Tags())
	assert.Equal(t, 1, f.enricher.calls)

	withReviews, err := f.svc.Book(ctx, f.gatsby.ID())
	require.NoError(t, err)
	require.Len(t, withReviews.Reviews(), 1)
	assert.Equal(t, saved.ID(), withReviews.Reviews()[0].ID())
}

func TestBooks_CreateReviewUnknownBookSkipsEnrichment(t *testing.T) {
	f := newBooksFixture(t)

	_, err := f.svc.CreateReview(context.Background(), "6f1c2a52-8d6e-4b8a-9a43-3c3c1f0d9e11", validInput())
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.Equal(t, 0, f.enricher.calls)
}

func TestBooks_CreateReviewValidation(t *testing.T) {
	tests := []struct {
		name     string
		input    ReviewInput
		messages []string
	}{
		{
			name:     "missing everything",
			input:    ReviewInput{},
			messages: []string{"Reviewer name is required", "Review text is required", "Rating must be at least 1"},
		},
		{
			name:     "short name and text",
			input:    ReviewInput{ReviewerName: " J ", Text: "too short", Rating: 3},
			messages: []string{"Reviewer name must be at least 2 characters long", "Review text must be at least 10 characters long"},
		},
		{
			name:     "long text",
			input:    ReviewInput{ReviewerName: "Jay", Text: strings.Repeat("x", 2001), Rating: 3},
			messages: []string{"Review text must not exceed 2000 characters"},
		},
		{
			name:     "rating too high",
			input:    ReviewInput{ReviewerName: "Jay", Text: "Long enough review.", Rating: 6},
			messages: []string{"Rating must not exceed 5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBooksFixture(t)

			_, err := f.svc.CreateReview(context.Background(), f.gatsby.ID(), tt.input)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.messages, verr.Messages())
			assert.Equal(t, 0, f.enricher.calls)
		})
	}
}

func TestBooks_CreateReviewUnavailablePersistsNothing(t *testing.T) {
	f := newBooksFixture(t)
	ctx := context.Background()
	f.enricher.err = enrichment.NewUnavailableError(MaxEnrichmentAttempts, errors.New("timeout"))

	_, err := f.svc.CreateReview(ctx, f.gatsby.ID(), validInput())
	require.ErrorIs(t, err, enrichment.ErrServiceUnavailable)

	count, err := f.reviews.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBooks_SeedOnlyWhenEmpty(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()
	transact := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return database.WithTransaction(ctx, db, fn)
	}
	svc := NewBooks(persistence.NewBookStore(db), persistence.NewReviewStore(db), &fakeEnricher{}, transact, nil)

	catalog, err := persistence.SampleCatalog()
	require.NoError(t, err)

	added, err := svc.Seed(ctx, catalog)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	again, err := persistence.SampleCatalog()
	require.NoError(t, err)
	added, err = svc.Seed(ctx, again)
	require.NoError(t, err)
	assert.Zero(t, added)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

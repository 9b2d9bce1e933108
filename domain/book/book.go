// Package book provides the catalog domain types: books and their reviews.
package book

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry. Reviews are only populated when loaded with the book.
type Book struct {
	id            string
	title         string
	author        string
	description   string
	coverImageURL string
	reviews       []Review
	createdAt     time.Time
	updatedAt     time.Time
}

// NewBook creates a book that has not been persisted yet.
func NewBook(title, author, description, coverImageURL string) Book {
	now := time.Now().UTC()
	return Book{
		id:            uuid.NewString(),
		title:         title,
		author:        author,
		description:   description,
		coverImageURL: coverImageURL,
		createdAt:     now,
		updatedAt:     now,
	}
}

// ReconstructBook recreates a book from persistence.
func ReconstructBook(
	id string,
	title string,
	author string,
	description string,
	coverImageURL string,
	reviews []Review,
	createdAt time.Time,
	updatedAt time.Time,
) Book {
	return Book{
		id:            id,
		title:         title,
		author:        author,
		description:   description,
		coverImageURL: coverImageURL,
		reviews:       copyReviews(reviews),
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the book's UUID.
func (b Book) ID() string { return b.id }

// Title returns the book title.
func (b Book) Title() string { return b.title }

// Author returns the book author.
func (b Book) Author() string { return b.author }

// Description returns the book description.
func (b Book) Description() string { return b.description }

// CoverImageURL returns the cover image URL, if any.
func (b Book) CoverImageURL() string { return b.coverImageURL }

// Reviews returns a copy of the loaded reviews.
func (b Book) Reviews() []Review { return copyReviews(b.reviews) }

// CreatedAt returns when the book was created.
func (b Book) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns when the book was last updated.
func (b Book) UpdatedAt() time.Time { return b.updatedAt }

// WithReviews returns a copy of the book carrying reviews.
func (b Book) WithReviews(reviews []Review) Book {
	b.reviews = copyReviews(reviews)
	return b
}

// Ref returns the short reference embedded in review search results.
func (b Book) Ref() Ref {
	return Ref{ID: b.id, Title: b.title, Author: b.author}
}

// Ref identifies a book inside another result.
type Ref struct {
	ID     string
	Title  string
	Author string
}

func copyReviews(reviews []Review) []Review {
	if reviews == nil {
		return nil
	}
	result := make([]Review, len(reviews))
	copy(result, reviews)
	return result
}

// IsValidID reports whether id is a version 4 UUID.
func IsValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.Version() == 4 && len(id) == 36
}

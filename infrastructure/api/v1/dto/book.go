// Package dto holds the JSON shapes of the v1 API.
package dto

import (
	"time"

	"github.com/helixml/bookshelf/domain/book"
)

// Book is a catalog entry without reviews.
type Book struct {
	ID            string    `json:"id" example:"3f0c9a9e-2b7a-4d55-9c8e-0d6f1c1f8a21"`
	Title         string    `json:"title" example:"The Great Gatsby"`
	Author        string    `json:"author" example:"F. Scott Fitzgerald"`
	Description   string    `json:"description"`
	CoverImageURL string    `json:"coverImageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BookDetail is a book with its reviews, newest first.
type BookDetail struct {
	Book
	Reviews []Review `json:"reviews"`
}

// Review is a stored review with its generated fields.
type Review struct {
	ID             string    `json:"id"`
	BookID         string    `json:"bookId"`
	ReviewerName   string    `json:"reviewerName" example:"Ada"`
	Text           string    `json:"text"`
	Rating         int       `json:"rating" example:"5"`
	Summary        string    `json:"summary" example:"Enthusiastic review praising the characters"`
	SentimentScore float64   `json:"sentimentScore" example:"0.9"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateReviewRequest is the body of POST /books/{id}/reviews. Rating is
// kept raw so a non-integer value can be reported as such.
type CreateReviewRequest struct {
	ReviewerName string `json:"reviewerName" example:"Ada"`
	Text         string `json:"text" example:"A dazzling, tragic portrait of the Jazz Age."`
	Rating       any    `json:"rating" swaggertype:"integer" example:"5"`
}

// BookFromDomain converts a domain book.
func BookFromDomain(b book.Book) Book {
	return Book{
		ID:            b.ID(),
		Title:         b.Title(),
		Author:        b.Author(),
		Description:   b.Description(),
		CoverImageURL: b.CoverImageURL(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}

// BooksFromDomain converts a list of domain books.
func BooksFromDomain(books []book.Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[i] = BookFromDomain(b)
	}
	return out
}

// BookDetailFromDomain converts a domain book loaded with its reviews.
func BookDetailFromDomain(b book.Book) BookDetail {
	reviews := b.Reviews()
	out := make([]Review, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewFromDomain(r)
	}
	return BookDetail{Book: BookFromDomain(b), Reviews: out}
}

// ReviewFromDomain converts a domain review.
func ReviewFromDomain(r book.Review) Review {
	return Review{
		ID:             r.ID(),
		BookID:         r.BookID(),
		ReviewerName:   r.ReviewerName(),
		Text:           r.Text(),
		Rating:         r.Rating(),
		Summary:        r.Summary(),
		SentimentScore: r.SentimentScore(),
		Tags:           r.Tags(),
		CreatedAt:      r.CreatedAt(),
	}
}

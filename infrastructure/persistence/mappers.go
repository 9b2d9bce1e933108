package persistence

import (
	"github.com/helixml/bookshelf/domain/book"
)

// BookMapper maps between domain Book and persistence BookModel.
type BookMapper struct{}

// ToDomain converts a BookModel to a domain Book. Reviews are carried over
// only when they were preloaded.
func (m BookMapper) ToDomain(e BookModel) book.Book {
	var reviews []book.Review
	if e.Reviews != nil {
		reviews = make([]book.Review, len(e.Reviews))
		for i, r := range e.Reviews {
			reviews[i] = ReviewMapper{}.ToDomain(r)
		}
	}
	return book.ReconstructBook(
		e.ID,
		e.Title,
		e.Author,
		e.Description,
		e.CoverImageURL,
		reviews,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

// ToModel converts a domain Book to a BookModel without its reviews.
func (m BookMapper) ToModel(b book.Book) BookModel {
	return BookModel{
		ID:            b.ID(),
		Title:         b.Title(),
		Author:        b.Author(),
		Description:   b.Description(),
		CoverImageURL: b.CoverImageURL(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}

// ReviewMapper maps between domain Review and persistence ReviewModel.
type ReviewMapper struct{}

// ToDomain converts a ReviewModel to a domain Review.
func (m ReviewMapper) ToDomain(e ReviewModel) book.Review {
	r := book.ReconstructReview(
		e.ID,
		e.BookID,
		e.ReviewerName,
		e.Text,
		e.Rating,
		e.Summary,
		e.SentimentScore,
		e.Tags,
		e.CreatedAt,
	)
	if e.Book != nil {
		r = r.WithBook(book.Ref{ID: e.Book.ID, Title: e.Book.Title, Author: e.Book.Author})
	}
	return r
}

// ToModel converts a domain Review to a ReviewModel.
func (m ReviewMapper) ToModel(r book.Review) ReviewModel {
	return ReviewModel{
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

package book

import (
	"time"

	"github.com/google/uuid"

	"github.com/helixml/bookshelf/domain/enrichment"
)

// Submission is a reader's review before enrichment.
type Submission struct {
	reviewerName string
	text         string
	rating       int
}

// NewSubmission creates a Submission. Validation happens in the service layer.
func NewSubmission(reviewerName, text string, rating int) Submission {
	return Submission{reviewerName: reviewerName, text: text, rating: rating}
}

// ReviewerName returns the reviewer's display name.
func (s Submission) ReviewerName() string { return s.reviewerName }

// Text returns the review body.
func (s Submission) Text() string { return s.text }

// Rating returns the star rating, 1 to 5.
func (s Submission) Rating() int { return s.rating }

// Review is a stored, enriched review of a book.
type Review struct {
	id             string
	bookID         string
	reviewerName   string
	text           string
	rating         int
	summary        string
	sentimentScore float64
	tags           []string
	book           *Ref
	createdAt      time.Time
}

// NewReview merges a submission with its enrichment into a review that has
// not been persisted yet.
func NewReview(bookID string, s Submission, e enrichment.Result) Review {
	return Review{
		id:             uuid.NewString(),
		bookID:         bookID,
		reviewerName:   s.reviewerName,
		text:           s.text,
		rating:         s.rating,
		summary:        e.Summary(),
		sentimentScore: e.SentimentScore(),
		tags:           e.Tags(),
		createdAt:      time.Now().UTC(),
	}
}

// ReconstructReview recreates a review from persistence.
func ReconstructReview(
	id string,
	bookID string,
	reviewerName string,
	text string,
	rating int,
	summary string,
	sentimentScore float64,
	tags []string,
	createdAt time.Time,
) Review {
	t := make([]string, len(tags))
	copy(t, tags)
	return Review{
		id:             id,
		bookID:         bookID,
		reviewerName:   reviewerName,
		text:           text,
		rating:         rating,
		summary:        summary,
		sentimentScore: sentimentScore,
		tags:           t,
		createdAt:      createdAt,
	}
}

// ID returns the review's UUID.
func (r Review) ID() string { return r.id }

// BookID returns the reviewed book's UUID.
func (r Review) BookID() string { return r.bookID }

// ReviewerName returns the reviewer's display name.
func (r Review) ReviewerName() string { return r.reviewerName }

// Text returns the review body.
func (r Review) Text() string { return r.text }

// Rating returns the star rating.
func (r Review) Rating() int { return r.rating }

// Summary returns the generated summary.
func (r Review) Summary() string { return r.summary }

// SentimentScore returns the generated sentiment score.
func (r Review) SentimentScore() float64 { return r.sentimentScore }

// Tags returns a copy of the generated tags.
func (r Review) Tags() []string {
	t := make([]string, len(r.tags))
	copy(t, r.tags)
	return t
}

// Book returns the reviewed book's reference when it was loaded.
func (r Review) Book() (Ref, bool) {
	if r.book == nil {
		return Ref{}, false
	}
	return *r.book, true
}

// CreatedAt returns when the review was stored.
func (r Review) CreatedAt() time.Time { return r.createdAt }

// WithBook returns a copy of the review carrying its book reference.
func (r Review) WithBook(ref Ref) Review {
	r.book = &ref
	return r
}

// Package search provides the result types for catalog text search.
package search

import (
	"strings"

	"github.com/helixml/bookshelf/domain/book"
)

// MatchType names the field that caused a hit.
type MatchType string

// Book match types, in priority order.
const (
	MatchTitle       MatchType = "title"
	MatchAuthor      MatchType = "author"
	MatchDescription MatchType = "description"
)

// Review match types, in priority order.
const (
	MatchText         MatchType = "text"
	MatchReviewerName MatchType = "reviewerName"
)

// NormalizeTerm lowercases and trims a query.
func NormalizeTerm(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// BookMatch is a book hit with the field that matched.
type BookMatch struct {
	book      book.Book
	matchType MatchType
}

// Book returns the matched book.
func (m BookMatch) Book() book.Book { return m.book }

// MatchType returns the highest-priority matching field.
func (m BookMatch) MatchType() MatchType { return m.matchType }

// ReviewMatch is a review hit with the field that matched.
type ReviewMatch struct {
	review    book.Review
	matchType MatchType
}

// Review returns the matched review.
func (m ReviewMatch) Review() book.Review { return m.review }

// MatchType returns the highest-priority matching field.
func (m ReviewMatch) MatchType() MatchType { return m.matchType }

// MatchBook classifies a book against a normalized term. The boolean is
// false when no searchable field contains the term.
func MatchBook(b book.Book, term string) (BookMatch, bool) {
	switch {
	case contains(b.Title(), term):
		return BookMatch{book: b, matchType: MatchTitle}, true
	case contains(b.Author(), term):
		return BookMatch{book: b, matchType: MatchAuthor}, true
	case contains(b.Description(), term):
		return BookMatch{book: b, matchType: MatchDescription}, true
	default:
		return BookMatch{}, false
	}
}

// MatchReview classifies a review against a normalized term.
func MatchReview(r book.Review, term string) (ReviewMatch, bool) {
	switch {
	case contains(r.Text(), term):
		return ReviewMatch{review: r, matchType: MatchText}, true
	case contains(r.ReviewerName(), term):
		return ReviewMatch{review: r, matchType: MatchReviewerName}, true
	default:
		return ReviewMatch{}, false
	}
}

func contains(field, term string) bool {
	return strings.Contains(strings.ToLower(field), term)
}

// Result holds every hit for one query.
type Result struct {
	query   string
	books   []BookMatch
	reviews []ReviewMatch
}

// NewResult creates a Result.
func NewResult(query string, books []BookMatch, reviews []ReviewMatch) Result {
	b := make([]BookMatch, len(books))
	copy(b, books)
	r := make([]ReviewMatch, len(reviews))
	copy(r, reviews)
	return Result{query: query, books: b, reviews: r}
}

// Query returns the normalized query.
func (r Result) Query() string { return r.query }

// Books returns the book hits.
func (r Result) Books() []BookMatch {
	b := make([]BookMatch, len(r.books))
	copy(b, r.books)
	return b
}

// Reviews returns the review hits.
func (r Result) Reviews() []ReviewMatch {
	rv := make([]ReviewMatch, len(r.reviews))
	copy(rv, r.reviews)
	return rv
}

// TotalResults returns the number of book and review hits.
func (r Result) TotalResults() int {
	return len(r.books) + len(r.reviews)
}

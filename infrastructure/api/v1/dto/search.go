package dto

import (
	"github.com/helixml/bookshelf/domain/search"
)

// BookRef identifies the book a review belongs to.
type BookRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookSearchResult is a book hit.
type BookSearchResult struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Description   string `json:"description"`
	CoverImageURL string `json:"coverImageUrl"`
	MatchType     string `json:"matchType" enums:"title,author,description"`
}

// ReviewSearchResult is a review hit.
type ReviewSearchResult struct {
	ID           string  `json:"id"`
	BookID       string  `json:"bookId"`
	ReviewerName string  `json:"reviewerName"`
	Text         string  `json:"text"`
	Rating       int     `json:"rating"`
	Book         BookRef `json:"book"`
	MatchType    string  `json:"matchType" enums:"text,reviewerName"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Books        []BookSearchResult   `json:"books"`
	Reviews      []ReviewSearchResult `json:"reviews"`
	TotalResults int                  `json:"totalResults"`
}

// SearchResponseFromDomain converts a search result.
func SearchResponseFromDomain(r search.Result) SearchResponse {
	matches := r.Books()
	books := make([]BookSearchResult, len(matches))
	for i, m := range matches {
		b := m.Book()
		books[i] = BookSearchResult{
			ID:            b.ID(),
			Title:         b.Title(),
			Author:        b.Author(),
			Description:   b.Description(),
			CoverImageURL: b.CoverImageURL(),
			MatchType:     string(m.MatchType()),
		}
	}

	hits := r.Reviews()
	reviews := make([]ReviewSearchResult, len(hits))
	for i, m := range hits {
		rv := m.Review()
		ref, _ := rv.Book()
		reviews[i] = ReviewSearchResult{
			ID:           rv.ID(),
			BookID:       rv.BookID(),
			ReviewerName: rv.ReviewerName(),
			Text:         rv.Text(),
			Rating:       rv.Rating(),
			Book:         BookRef{ID: ref.ID, Title: ref.Title, Author: ref.Author},
			MatchType:    string(m.MatchType()),
		}
	}

	return SearchResponse{Books: books, Reviews: reviews, TotalResults: r.TotalResults()}
}

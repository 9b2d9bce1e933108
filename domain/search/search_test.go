package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/helixml/bookshelf/domain/book"
)

func TestMatchBook_Priority(t *testing.T) {
	b := book.NewBook("Orwell Reader", "George Orwell", "Essays by Orwell", "")

	m, ok := MatchBook(b, "orwell")
	assert.True(t, ok)
	assert.Equal(t, MatchTitle, m.MatchType())

	m, ok = MatchBook(b, "george")
	assert.True(t, ok)
	assert.Equal(t, MatchAuthor, m.MatchType())

	m, ok = MatchBook(b, "essays")
	assert.True(t, ok)
	assert.Equal(t, MatchDescription, m.MatchType())

	_, ok = MatchBook(b, "gatsby")
	assert.False(t, ok)
}

func TestMatchReview_Priority(t *testing.T) {
	r := book.ReconstructReview("r", "b", "Jazz Fan", "Great jazz age story", 5, "", 0.5, nil, time.Now())

	m, ok := MatchReview(r, "jazz")
	assert.True(t, ok)
	assert.Equal(t, MatchText, m.MatchType())

	m, ok = MatchReview(r, "fan")
	assert.True(t, ok)
	assert.Equal(t, MatchReviewerName, m.MatchType())

	_, ok = MatchReview(r, "zzz")
	assert.False(t, ok)
}

func TestNormalizeTerm(t *testing.T) {
	assert.Equal(t, "gatsby", NormalizeTerm("  GaTsBy \n"))
	assert.Equal(t, "", NormalizeTerm("   "))
}

func TestResult_TotalResults(t *testing.T) {
	b, _ := MatchBook(book.NewBook("A", "B", "C", ""), "a")
	r, _ := MatchReview(book.ReconstructReview("r", "b", "n", "a text", 3, "", 0.5, nil, time.Now()), "a")

	res := NewResult("a", []BookMatch{b}, []ReviewMatch{r, r})
	assert.Equal(t, 3, res.TotalResults())
	assert.Equal(t, "a", res.Query())
	assert.Len(t, res.Books(), 1)
	assert.Len(t, res.Reviews(), 2)

	empty := NewResult("x", nil, nil)
	assert.Equal(t, 0, empty.TotalResults())
	assert.NotNil(t, empty.Books())
}

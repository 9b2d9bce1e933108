package v1_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/infrastructure/api/middleware"
	v1 "github.com/helixml/bookshelf/infrastructure/api/v1"
	"github.com/helixml/bookshelf/infrastructure/api/v1/dto"
	"github.com/helixml/bookshelf/infrastructure/provider"
)

// fakeProvider answers with reply or fails with err, counting calls.
type fakeProvider struct {
	calls atomic.Int64
	reply string
	err   error
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }
func (f *fakeProvider) ChatCompletion(context.Context, provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	f.calls.Add(1)
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.reply, "stop", provider.Usage{}), nil
}

type testAPI struct {
	handler  http.Handler
	client   *bookshelf.Client
	provider *fakeProvider
}

func newTestAPI(t *testing.T, p *fakeProvider) testAPI {
	t.Helper()
	dir := t.TempDir()
	client, err := bookshelf.New(
		bookshelf.WithSQLite(filepath.Join(dir, "test.db")),
		bookshelf.WithDataDir(dir),
		bookshelf.WithTextProvider(p),
		bookshelf.WithSleep(func(context.Context, time.Duration) {}),
		bookshelf.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	router := chi.NewRouter()
	router.Use(middleware.CorrelationID)
	router.Mount("/books", v1.NewBooksRouter(client, 0).Routes())
	router.Mount("/search", v1.NewSearchRouter(client).Routes())

	return testAPI{handler: router, client: client, provider: p}
}

func (a testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a testAPI) gatsby(t *testing.T) dto.Book {
	t.Helper()
	w := a.do(t, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var books []dto.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	for _, b := range books {
		if b.Title == "The Great Gatsby" {
			return b
		}
	}
	t.Fatal("seeded catalog has no Gatsby")
	return dto.Book{}
}

func errorDetails(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var body middleware.JSONAPIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	details := make([]string, len(body.Errors))
	for i, e := range body.Errors {
		details[i] = e.Detail
	}
	return details
}

const enrichedReply = "```json\n{\"summary\":\"Loved the prose\",\"sentimentScore\":0.92,\"tags\":[\"writing-style\",\"classic\"]}\n```"

func TestBooks_ListSeededCatalog(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: enrichedReply})

	w := api.do(t, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var books []dto.Book
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &books))
	require.Len(t, books, 3)
	assert.Equal(t, "1984", books[0].Title)
	assert.NotContains(t, w.Body.String(), `"reviews"`)
}

func TestBooks_GetValidatesID(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: enrichedReply})

	w := api.do(t, http.MethodGet, "/books/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Book ID must be a valid UUID"}, errorDetails(t, w))

	w = api.do(t, http.MethodGet, "/books/6f1c2a52-8d6e-4b8a-9a43-3c3c1f0d9e11", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"Book not found"}, errorDetails(t, w))
}

func TestBooks_CreateReviewThenGet(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: enrichedReply})
	gatsby := api.gatsby(t)

	w := api.do(t, http.MethodPost, "/books/"+gatsby.ID+"/reviews", map[string]any{
		"reviewerName": " Nick ",
		"text":         "Gorgeous sentences about a hollow dream.",
		"rating":       5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var review dto.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))
	assert.Equal(t, gatsby.ID, review.BookID)
	assert.Equal(t, "Nick", review.ReviewerName)
	assert.Equal(t, "Loved the prose", review.Summary)
	assert.InDelta(t, 0.92, review.SentimentScore, 1e-9)
	assert.Equal(t, []string{"writing-style", "classic"}, review.Tags)
	assert.Equal(t, int64(1), api.provider.calls.Load())

	w = api.do(t, http.MethodGet, "/books/"+gatsby.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail dto.BookDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, review.ID, detail.Reviews[0].ID)
}

func TestBooks_CreateReviewUnknownBookSkipsProvider(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: enrichedReply})

	w := api.do(t, http.MethodPost, "/books/6f1c2a52-8d6e-4b8a-9a43-3c3c1f0d9e11/reviews", map[string]any{
		"reviewerName": "Nick",
		"text":         "Gorgeous sentences about a hollow dream.",
		"rating":       4,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, api.provider.calls.Load())
}

func TestBooks_CreateReviewValidation(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: enrichedReply})
	gatsby := api.gatsby(t)
	path := "/books/" + gatsby.ID + "/reviews"

	tests := []struct {
		name    string
		body    any
		details []string
	}{
		{
			name:    "string rating",
			body:    map[string]any{"reviewerName": "Nick", "text": "Long enough review text.", "rating": "five"},
			details: []string{"Rating must be an integer"},
		},
		{
			name:    "fractional rating and short name",
			body:    map[string]any{"reviewerName": "N", "text": "Long enough review text.", "rating": 3.5},
			details: []string{"Reviewer name must be at least 2 characters long", "Rating must be an integer"},
		},
		{
			name:    "rating out of range",
			body:    map[string]any{"reviewerName": "Nick", "text": "Long enough review text.", "rating": 0},
			details: []string{"Rating must be at least 1"},
		},
		{
			name:    "blank text",
			body:    map[string]any{"reviewerName": "Nick", "text": "    ", "rating": 3},
			details: []string{"Review text is required"},
		},
		{
			name:    "malformed body",
			body:    "{not json",
			details: []string{"Request body must be a JSON object"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.details, errorDetails(t, w))
		})
	}
	assert.Zero(t, api.provider.calls.Load())
}

func TestBooks_CreateReviewServiceUnavailable(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{err: errors.New("connection refused")})
	gatsby := api.gatsby(t)

	w := api.do(t, http.MethodPost, "/books/"+gatsby.ID+"/reviews", map[string]any{
		"reviewerName": "Nick",
		"text":         "Gorgeous sentences about a hollow dream.",
		"rating":       5,
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, []string{"AI service is currently unavailable. Please try again later."}, errorDetails(t, w))
	assert.Equal(t, int64(3), api.provider.calls.Load())

	w = api.do(t, http.MethodGet, "/books/"+gatsby.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail dto.BookDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Empty(t, detail.Reviews)
}

func TestBooks_CreateReviewUnparseableReplyUsesDefaults(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: "Sorry, I cannot help with that."})
	gatsby := api.gatsby(t)

	w := api.do(t, http.MethodPost, "/books/"+gatsby.ID+"/reviews", map[string]any{
		"reviewerName": "Nick",
		"text":         "Gorgeous sentences about a hollow dream.",
		"rating":       5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var review dto.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))
	assert.Equal(t, "Review analysis unavailable", review.Summary)
	assert.InDelta(t, 0.5, review.SentimentScore, 1e-9)
	assert.Equal(t, []string{"review"}, review.Tags)
	assert.Equal(t, int64(1), api.provider.calls.Load())
}

func TestSearch(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: enrichedReply})
	gatsby := api.gatsby(t)

	w := api.do(t, http.MethodPost, "/books/"+gatsby.ID+"/reviews", map[string]any{
		"reviewerName": "Daisy",
		"text":         "The green light still haunts me.",
		"rating":       4,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(t, http.MethodGet, "/search?query=Daisy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result dto.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Empty(t, result.Books)
	require.Len(t, result.Reviews, 1)
	assert.Equal(t, "reviewerName", result.Reviews[0].MatchType)
	assert.Equal(t, "The Great Gatsby", result.Reviews[0].Book.Title)
	assert.Equal(t, 1, result.TotalResults)

	w = api.do(t, http.MethodGet, "/search?query=fitzgerald", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Books, 1)
	assert.Equal(t, "author", result.Books[0].MatchType)
}

func TestSearch_EmptyQuery(t *testing.T) {
	api := newTestAPI(t, &fakeProvider{reply: enrichedReply})

	w := api.do(t, http.MethodGet, "/search?query=%20%20", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Search query cannot be empty"}, errorDetails(t, w))

	w = api.do(t, http.MethodGet, "/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

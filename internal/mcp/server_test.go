package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/bookshelf/application/service"
	"github.com/helixml/bookshelf/domain/book"
	"github.com/helixml/bookshelf/domain/search"
)

const gatsbyID = "3f0c9a9e-2b7a-4d55-9c8e-0d6f1c1f8a21"

type fakeCatalog struct {
	books []book.Book
	err   error
}

func (f *fakeCatalog) List(_ context.Context) ([]book.Book, error) {
	return f.books, f.err
}

func (f *fakeCatalog) Book(_ context.Context, id string) (book.Book, error) {
	if !book.IsValidID(id) {
		return book.Book{}, service.NewValidationError("id", "Invalid book ID format")
	}
	for _, b := range f.books {
		if b.ID() == id {
			return b, nil
		}
	}
	return book.Book{}, service.NewNotFoundError("Book", id)
}

type fakeSearcher struct {
	books []book.Book
}

func (f *fakeSearcher) Query(_ context.Context, query string) (search.Result, error) {
	term := search.NormalizeTerm(query)
	if term == "" {
		return search.Result{}, service.NewValidationError("query", "Search query cannot be empty")
	}
	var matches []search.BookMatch
	for _, b := range f.books {
		if m, ok := search.MatchBook(b, term); ok {
			matches = append(matches, m)
		}
	}
	return search.NewResult(query, matches, nil), nil
}

func testBooks() []book.Book {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	review := book.ReconstructReview(
		"7b1e4c2a-9d3f-4e8b-a5c6-1f2e3d4c5b6a",
		gatsbyID,
		"Ada",
		"A dazzling portrait of the Jazz Age.",
		5,
		"Enthusiastic review",
		0.9,
		[]string{"classic"},
		created,
	)
	return []book.Book{
		book.ReconstructBook(gatsbyID, "The Great Gatsby", "F. Scott Fitzgerald", "Jazz Age novel", "", []book.Review{review}, created, created),
	}
}

func testServer() *Server {
	books := testBooks()
	return NewServer(&fakeCatalog{books: books}, &fakeSearcher{books: books}, "0.1.0-test", nil)
}

func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	result := srv.MCPServer().HandleMessage(context.Background(), raw)
	resp, ok := result.(mcp.JSONRPCResponse)
	require.Truef(t, ok, "expected JSONRPCResponse, got %T: %+v", result, result)
	return resp
}

func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, dst))
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	sendMessage(t, srv, "initialize", 1, initializeParams())
	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      name,
		"arguments": args,
	})
	var result mcp.CallToolResult
	resultJSON(t, resp, &result)
	return result
}

// textFromContent round-trips the first content item through JSON because
// in-process responses may hold it as a map.
func textFromContent(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	b, err := json.Marshal(result.Content[0])
	require.NoError(t, err)
	var tc struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(b, &tc))
	return tc.Text
}

func TestServer_Initialize(t *testing.T) {
	srv := testServer()
	resp := sendMessage(t, srv, "initialize", 1, initializeParams())

	var result mcp.InitializeResult
	resultJSON(t, resp, &result)

	assert.Equal(t, "bookshelf", result.ServerInfo.Name)
	assert.Equal(t, "0.1.0-test", result.ServerInfo.Version)
	assert.NotNil(t, result.Capabilities.Tools)
}

func TestServer_ListTools(t *testing.T) {
	srv := testServer()
	sendMessage(t, srv, "initialize", 1, initializeParams())
	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"list_books", "get_book", "search"}, names)
}

func TestServer_ListBooks(t *testing.T) {
	result := callTool(t, testServer(), "list_books", map[string]any{})
	require.False(t, result.IsError)

	var books []struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	require.NoError(t, json.Unmarshal([]byte(textFromContent(t, result)), &books))
	require.Len(t, books, 1)
	assert.Equal(t, gatsbyID, books[0].ID)
	assert.Equal(t, "The Great Gatsby", books[0].Title)
}

func TestServer_ListBooksFailure(t *testing.T) {
	srv := NewServer(&fakeCatalog{err: errors.New("db down")}, &fakeSearcher{}, "test", nil)
	result := callTool(t, srv, "list_books", map[string]any{})
	assert.True(t, result.IsError)
	assert.Contains(t, textFromContent(t, result), "db down")
}

func TestServer_GetBook(t *testing.T) {
	result := callTool(t, testServer(), "get_book", map[string]any{"id": gatsbyID})
	require.False(t, result.IsError)

	var detail struct {
		Title   string `json:"title"`
		Reviews []struct {
			ReviewerName   string   `json:"reviewerName"`
			SentimentScore float64  `json:"sentimentScore"`
			Tags           []string `json:"tags"`
		} `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal([]byte(textFromContent(t, result)), &detail))
	assert.Equal(t, "The Great Gatsby", detail.Title)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Ada", detail.Reviews[0].ReviewerName)
	assert.InDelta(t, 0.9, detail.Reviews[0].SentimentScore, 1e-9)
	assert.Equal(t, []string{"classic"}, detail.Reviews[0].Tags)
}

func TestServer_GetBookErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing id", args: map[string]any{}, want: "id is required"},
		{name: "malformed id", args: map[string]any{"id": "not-a-uuid"}, want: "Invalid book ID format"},
		{name: "unknown id", args: map[string]any{"id": "00000000-0000-4000-8000-000000000000"}, want: "Book not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callTool(t, testServer(), "get_book", tt.args)
			assert.True(t, result.IsError)
			assert.Equal(t, tt.want, textFromContent(t, result))
		})
	}
}

func TestServer_Search(t *testing.T) {
	result := callTool(t, testServer(), "search", map[string]any{"query": "GATSBY"})
	require.False(t, result.IsError)

	var resp struct {
		Books []struct {
			Title     string `json:"title"`
			MatchType string `json:"matchType"`
		} `json:"books"`
		Reviews      []any `json:"reviews"`
		TotalResults int   `json:"totalResults"`
	}
	require.NoError(t, json.Unmarshal([]byte(textFromContent(t, result)), &resp))
	require.Len(t, resp.Books, 1)
	assert.Equal(t, "title", resp.Books[0].MatchType)
	assert.Empty(t, resp.Reviews)
	assert.Equal(t, 1, resp.TotalResults)
}

func TestServer_SearchEmptyQuery(t *testing.T) {
	result := callTool(t, testServer(), "search", map[string]any{"query": "   "})
	assert.True(t, result.IsError)
	assert.Equal(t, "Search query cannot be empty", textFromContent(t, result))
}

var (
	_ Catalog  = (*fakeCatalog)(nil)
	_ Searcher = (*fakeSearcher)(nil)
	_ Catalog  = (*service.Books)(nil)
	_ Searcher = (*service.Search)(nil)
)

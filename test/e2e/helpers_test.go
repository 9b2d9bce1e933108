package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/infrastructure/api"
	"github.com/helixml/bookshelf/infrastructure/persistence"
	"github.com/helixml/bookshelf/internal/config"
	"github.com/helixml/bookshelf/internal/database"
)

// Upstream mimics an OpenAI-compatible chat completions endpoint.
type Upstream struct {
	server *httptest.Server
	calls  atomic.Int64

	mu      sync.Mutex
	status  int
	content string
	prompts []string
}

func newUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{
		status:  http.StatusOK,
		content: `{"summary":"Enthusiastic take on the characters","sentimentScore":0.92,"tags":["character-development","classic"]}`,
	}
	u.server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.server.Close)
	return u
}

func (u *Upstream) handle(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}

	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	status, content := u.status, u.content
	for _, m := range body.Messages {
		if m.Role == "user" {
			u.prompts = append(u.prompts, m.Content)
		}
	}
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream overloaded", "type": "server_error"},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  body.Model,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
	})
}

// Fail makes every following call return status.
func (u *Upstream) Fail(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
}

// Reply sets the assistant content of following calls.
func (u *Upstream) Reply(content string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.content = content
}

// Calls returns how many requests reached the upstream.
func (u *Upstream) Calls() int64 { return u.calls.Load() }

// Prompts returns the user messages received so far.
func (u *Upstream) Prompts() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, len(u.prompts))
	copy(out, u.prompts)
	return out
}

// TestServer runs the full API over loopback HTTP.
type TestServer struct {
	t          *testing.T
	client     *bookshelf.Client
	upstream   *Upstream
	httpServer *httptest.Server
	reviews    persistence.ReviewStore

	mu     sync.Mutex
	sleeps []time.Duration
}

// NewTestServer wires a bookshelf.Client on a temp SQLite file to the
// OpenAI provider pointed at a local upstream.
func NewTestServer(t *testing.T, opts ...api.Option) *TestServer {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	ts := &TestServer{t: t, upstream: newUpstream(t)}

	client, err := bookshelf.New(
		bookshelf.WithSQLite(dbPath),
		bookshelf.WithDataDir(tmpDir),
		bookshelf.WithEndpoint(config.NewEndpointWithOptions(
			config.WithProvider(config.ProviderOpenAI),
			config.WithBaseURL(ts.upstream.server.URL+"/v1"),
			config.WithAPIKey("test-key"),
			config.WithModel("test-model"),
		)),
		bookshelf.WithSleep(ts.recordSleep),
		bookshelf.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	ts.client = client

	// A separate handle reads rows back without going through the API.
	db, err := database.NewDatabase(context.Background(), "sqlite:///"+dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ts.reviews = persistence.NewReviewStore(db)

	apiServer := api.NewAPIServer(client, opts...)
	server := api.NewServer(":0", client.Logger())
	server.Router().Mount("/", apiServer.Handler())

	ts.httpServer = httptest.NewServer(server.Router())
	t.Cleanup(ts.httpServer.Close)

	return ts
}

func (ts *TestServer) recordSleep(_ context.Context, d time.Duration) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.sleeps = append(ts.sleeps, d)
}

// Sleeps returns the backoff delays requested so far.
func (ts *TestServer) Sleeps() []time.Duration {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	out := make([]time.Duration, len(ts.sleeps))
	copy(out, ts.sleeps)
	return out
}

// URL returns the absolute URL for path.
func (ts *TestServer) URL(path string) string {
	return ts.httpServer.URL + path
}

// GET performs a GET request.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := http.Get(ts.URL(path))
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// POST sends body as JSON.
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	data, err := json.Marshal(body)
	require.NoError(ts.t, err)
	resp, err := http.Post(ts.URL(path), "application/json", bytes.NewReader(data))
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Decode reads a JSON response body into dst.
func (ts *TestServer) Decode(resp *http.Response, dst any) {
	ts.t.Helper()
	require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(dst))
}

// ErrorDetails returns the detail of every JSON:API error in resp.
func (ts *TestServer) ErrorDetails(resp *http.Response) []string {
	ts.t.Helper()
	var body struct {
		Errors []struct {
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	ts.Decode(resp, &body)
	details := make([]string, len(body.Errors))
	for i, e := range body.Errors {
		details[i] = e.Detail
	}
	return details
}

// BookID returns the ID of the catalog book with the given title.
func (ts *TestServer) BookID(title string) string {
	ts.t.Helper()
	var books []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	ts.Decode(ts.GET("/api/v1/books"), &books)
	for _, b := range books {
		if b.Title == title {
			return b.ID
		}
	}
	ts.t.Fatalf("book %q not in catalog", title)
	return ""
}

// StoredReviews counts review rows.
func (ts *TestServer) StoredReviews() int64 {
	ts.t.Helper()
	n, err := ts.reviews.Count(context.Background())
	require.NoError(ts.t, err)
	return n
}

package provider

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// generationPathSuffixes identify the model calls worth caching: OpenAI
// chat completions, Anthropic messages and Gemini generateContent.
var generationPathSuffixes = []string{
	"/chat/completions",
	"/v1/messages",
	":generateContent",
}

// CachingTransport replays successful generation responses from disk so
// repeated enrichment of the same review text does not hit a paid endpoint.
// Entries are keyed on the endpoint path and the canonical JSON payload;
// query strings and headers (where API keys live) are not part of the key.
// Other requests, and cache read/write failures, go to the inner transport.
type CachingTransport struct {
	inner http.RoundTripper
	dir   string
}

// NewCachingTransport creates a CachingTransport that stores entries under
// dir. If inner is nil, http.DefaultTransport is used.
func NewCachingTransport(dir string, inner http.RoundTripper) (*CachingTransport, error) {
	if inner == nil {
		inner = http.DefaultTransport
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &CachingTransport{inner: inner, dir: dir}, nil
}

type cachedGeneration struct {
	Endpoint   string              `json:"endpoint"`
	StoredAt   time.Time           `json:"stored_at"`
	StatusCode int                 `json:"status_code"`
	Header     map[string][]string `json:"header"`
	Body       string              `json:"body"`
}

// RoundTrip implements http.RoundTripper.
func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isGenerationRequest(req) {
		return t.inner.RoundTrip(req)
	}

	payload, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("read generation request: %w", err)
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(payload))

	path := filepath.Join(t.dir, generationKey(req.URL.Path, payload)+".json")
	if resp, ok := readGeneration(path, req); ok {
		return resp, nil
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}
	writeGeneration(path, cachedGeneration{
		Endpoint:   req.URL.Path,
		StoredAt:   time.Now().UTC(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       base64.StdEncoding.EncodeToString(body),
	})

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func isGenerationRequest(req *http.Request) bool {
	if req.Method != http.MethodPost || req.Body == nil || req.URL == nil {
		return false
	}
	for _, suffix := range generationPathSuffixes {
		if strings.HasSuffix(req.URL.Path, suffix) {
			return true
		}
	}
	return false
}

// generationKey hashes the endpoint path with the payload re-encoded with
// sorted keys, so field order and whitespace do not split entries.
// Payloads that are not JSON are hashed as sent.
func generationKey(endpoint string, payload []byte) string {
	canonical := payload
	var v any
	if json.Unmarshal(payload, &v) == nil {
		if b, err := json.Marshal(v); err == nil {
			canonical = b
		}
	}
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte("\n"))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}

func readGeneration(path string, req *http.Request) (*http.Response, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var cached cachedGeneration
	if err := json.Unmarshal(data, &cached); err != nil || cached.Endpoint != req.URL.Path {
		return nil, false
	}
	body, err := base64.StdEncoding.DecodeString(cached.Body)
	if err != nil {
		return nil, false
	}
	return &http.Response{
		StatusCode:    cached.StatusCode,
		Status:        fmt.Sprintf("%d %s", cached.StatusCode, http.StatusText(cached.StatusCode)),
		Header:        cached.Header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, true
}

func writeGeneration(path string, entry cachedGeneration) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0o644)
}

package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the API key on protected requests.
const APIKeyHeader = "X-API-KEY"

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	apiKeys [][]byte
	enabled bool
}

// NewAuthConfigWithKeys creates an AuthConfig. Empty keys are ignored and
// no keys at all disables authentication.
func NewAuthConfigWithKeys(apiKeys []string) AuthConfig {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return AuthConfig{}
	}
	return AuthConfig{apiKeys: keys, enabled: true}
}

// Enabled returns true if authentication is enabled.
func (c AuthConfig) Enabled() bool { return c.enabled }

func (c AuthConfig) valid(key string) bool {
	candidate := []byte(key)
	for _, k := range c.apiKeys {
		if subtle.ConstantTimeCompare(k, candidate) == 1 {
			return true
		}
	}
	return false
}

// APIKey returns a middleware that requires the X-API-KEY header on every
// request. A disabled config passes all requests through.
func APIKey(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled {
				next.ServeHTTP(w, r)
				return
			}
			if !authorize(config, w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtect returns a middleware that requires a valid API key only for
// mutating methods. GET, HEAD and OPTIONS always pass.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if !authorize(config, w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtectAuth builds WriteProtect from a slice of API keys.
func WriteProtectAuth(apiKeys []string) func(http.Handler) http.Handler {
	return WriteProtect(NewAuthConfigWithKeys(apiKeys))
}

func authorize(config AuthConfig, w http.ResponseWriter, r *http.Request) bool {
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		WriteError(w, r, NewAuthenticationError("X-API-KEY header is required"), nil)
		return false
	}
	if !config.valid(key) {
		WriteError(w, r, NewAuthenticationError("Invalid API key"), nil)
		return false
	}
	return true
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

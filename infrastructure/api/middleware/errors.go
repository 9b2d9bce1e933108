package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/helixml/bookshelf/application/service"
	"github.com/helixml/bookshelf/domain/enrichment"
	"github.com/helixml/bookshelf/internal/database"
)

// ErrAuthentication indicates authentication failure.
var ErrAuthentication = errors.New("authentication failed")

// APIError is an error carrying the HTTP status to respond with.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

// AuthenticationError represents a rejected API key.
type AuthenticationError struct {
	message string
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.message)
}

// Message returns the client-facing message.
func (e *AuthenticationError) Message() string { return e.message }

// Unwrap returns ErrAuthentication.
func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// JSONAPIError represents a JSON:API error object.
type JSONAPIError struct {
	Status string              `json:"status"`
	Title  string              `json:"title"`
	Detail string              `json:"detail,omitempty"`
	ID     string              `json:"id,omitempty"`
	Source *JSONAPIErrorSource `json:"source,omitempty"`
}

// JSONAPIErrorSource points at the request field that caused an error.
type JSONAPIErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// JSONAPIErrorResponse represents a JSON:API error response wrapper.
type JSONAPIErrorResponse struct {
	Errors []JSONAPIError `json:"errors"`
}

// WriteError writes a JSON:API formatted error response. Internal details
// of 5xx failures are logged, never sent.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := "Internal Server Error"
	detail := "An unexpected error occurred"
	var fields []service.FieldError

	var apiErr *APIError
	var authErr *AuthenticationError
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		title = "Validation Error"
		detail = validationErr.Error()
		fields = validationErr.Fields()
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		title = http.StatusText(status)
		detail = apiErr.Message()
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
		title = "Unauthorized"
		detail = authErr.Message()
	case errors.Is(err, enrichment.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
		title = "Service Unavailable"
		detail = enrichment.ErrServiceUnavailable.Error()
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
		title = "Not Found"
		detail = notFoundDetail(err)
	}

	correlationID := GetCorrelationID(r.Context())

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			slog.String("correlation_id", correlationID),
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	resp := JSONAPIErrorResponse{}
	if len(fields) > 0 {
		for _, f := range fields {
			resp.Errors = append(resp.Errors, JSONAPIError{
				Status: fmt.Sprint(status),
				Title:  title,
				Detail: f.Message,
				ID:     correlationID,
				Source: errorSource(f.Field),
			})
		}
	} else {
		resp.Errors = []JSONAPIError{{
			Status: fmt.Sprint(status),
			Title:  title,
			Detail: detail,
			ID:     correlationID,
		}}
	}

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// errorSource points path and query parameters by name and body fields by
// JSON pointer.
func errorSource(field string) *JSONAPIErrorSource {
	switch field {
	case "id", "query":
		return &JSONAPIErrorSource{Parameter: field}
	default:
		return &JSONAPIErrorSource{Pointer: "/" + field}
	}
}

func notFoundDetail(err error) string {
	var nf *service.NotFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return "Resource not found"
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

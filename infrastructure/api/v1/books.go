// Package v1 provides the v1 API routes.
package v1

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/application/service"
	"github.com/helixml/bookshelf/infrastructure/api/middleware"
	"github.com/helixml/bookshelf/infrastructure/api/v1/dto"
)

// maxReviewBody caps the size of a review submission.
const maxReviewBody = 64 << 10

// BooksRouter handles book and review endpoints.
type BooksRouter struct {
	client          *bookshelf.Client
	logger          *slog.Logger
	reviewRateLimit int
}

// NewBooksRouter creates a new BooksRouter. reviewRateLimit bounds review
// submissions per client IP per minute; zero disables the limit.
func NewBooksRouter(client *bookshelf.Client, reviewRateLimit int) *BooksRouter {
	return &BooksRouter{
		client:          client,
		logger:          client.Logger(),
		reviewRateLimit: reviewRateLimit,
	}
}

// Routes returns the chi router for book endpoints.
func (r *BooksRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Get("/{id}", r.Get)
	router.With(middleware.RateLimitByIP(r.reviewRateLimit, time.Minute)).
		Post("/{id}/reviews", r.CreateReview)

	return router
}

// List handles GET /api/v1/books.
//
//	@Summary		List books
//	@Description	Get every book in the catalog, ordered by title
//	@Tags			books
//	@Produce		json
//	@Success		200	{array}		dto.Book
//	@Failure		500	{object}	middleware.JSONAPIErrorResponse
//	@Router			/books [get]
func (r *BooksRouter) List(w http.ResponseWriter, req *http.Request) {
	books, err := r.client.Books.List(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.BooksFromDomain(books))
}

// Get handles GET /api/v1/books/{id}.
//
//	@Summary		Get book
//	@Description	Get a book with its reviews, newest first
//	@Tags			books
//	@Produce		json
//	@Param			id	path		string	true	"Book ID (UUID)"
//	@Success		200	{object}	dto.BookDetail
//	@Failure		400	{object}	middleware.JSONAPIErrorResponse
//	@Failure		404	{object}	middleware.JSONAPIErrorResponse
//	@Failure		500	{object}	middleware.JSONAPIErrorResponse
//	@Router			/books/{id} [get]
func (r *BooksRouter) Get(w http.ResponseWriter, req *http.Request) {
	b, err := r.client.Books.Book(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.BookDetailFromDomain(b))
}

// CreateReview handles POST /api/v1/books/{id}/reviews.
//
//	@Summary		Create review
//	@Description	Submit a review; it is enriched with a summary, sentiment score and tags before it is stored
//	@Tags			books
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Book ID (UUID)"
//	@Param			body	body		dto.CreateReviewRequest	true	"Review"
//	@Success		201		{object}	dto.Review
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Failure		401		{object}	middleware.JSONAPIErrorResponse
//	@Failure		404		{object}	middleware.JSONAPIErrorResponse
//	@Failure		429		{object}	middleware.JSONAPIErrorResponse
//	@Failure		503		{object}	middleware.JSONAPIErrorResponse
//	@Security		APIKeyAuth
//	@Router			/books/{id}/reviews [post]
func (r *BooksRouter) CreateReview(w http.ResponseWriter, req *http.Request) {
	var body dto.CreateReviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxReviewBody)).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "Request body must be a JSON object", err), r.logger)
		return
	}

	rating, ok := parseRating(body.Rating)
	input := service.ReviewInput{
		ReviewerName: body.ReviewerName,
		Text:         body.Text,
		Rating:       rating,
	}
	if !ok {
		middleware.WriteError(w, req, ratingError(input), r.logger)
		return
	}

	review, err := r.client.Books.CreateReview(req.Context(), chi.URLParam(req, "id"), input)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.ReviewFromDomain(review))
}

// parseRating accepts JSON numbers with no fractional part.
func parseRating(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// ratingError reports a non-integer rating together with any other
// invalid field of the submission.
func ratingError(in service.ReviewInput) error {
	in.Rating = 1
	var fields []service.FieldError
	if _, err := in.Validate(); err != nil {
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		fields = verr.Fields()
	}
	fields = append(fields, service.FieldError{Field: "rating", Message: "Rating must be an integer"})
	return service.NewFieldsValidationError(fields...)
}

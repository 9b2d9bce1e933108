package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/bookshelf"
	"github.com/helixml/bookshelf/infrastructure/api/middleware"
	"github.com/helixml/bookshelf/infrastructure/api/v1/dto"
)

// SearchRouter handles search API endpoints.
type SearchRouter struct {
	client *bookshelf.Client
	logger *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *bookshelf.Client) *SearchRouter {
	return &SearchRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Search)

	return router
}

// Search handles GET /api/v1/search.
//
//	@Summary		Search the catalog
//	@Description	Case-insensitive substring search over book titles, authors and descriptions, and review texts and reviewer names
//	@Tags			search
//	@Produce		json
//	@Param			query	query		string	true	"Search term"
//	@Success		200		{object}	dto.SearchResponse
//	@Failure		400		{object}	middleware.JSONAPIErrorResponse
//	@Failure		500		{object}	middleware.JSONAPIErrorResponse
//	@Router			/search [get]
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	result, err := r.client.Search.Query(req.Context(), req.URL.Query().Get("query"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.SearchResponseFromDomain(result))
}

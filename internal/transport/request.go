package transport

import (
	"net/http"
	"strconv"
	"strings"

	"catalog-backend/internal/domain"
	"catalog-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// parseID reads the {id} URL parameter. It writes a 400 response and
// returns false when the parameter is not a UUID.
func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationQuery reads page, limit, search, sort and sort_order from
// the query string. Malformed or out-of-range values are reported as field
// errors.
func parsePaginationQuery(r *http.Request) (domain.PaginationQuery, []middleware.ValidationError) {
	values := r.URL.Query()
	query := domain.PaginationQuery{
		Search: values.Get("search"),
		Sort:   values.Get("sort"),
	}

	var fieldErrors []middleware.ValidationError

	intParam := func(name string, dst *int) {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, middleware.ValidationError{Field: name, Message: "Value must be an integer"})
			return
		}
		*dst = n
	}
	intParam("page", &query.Page)
	intParam("limit", &query.Limit)

	if raw := values.Get("sort_order"); strings.TrimSpace(raw) != "" {
		order, ok := domain.ParseSortOrder(raw)
		if !ok {
			fieldErrors = append(fieldErrors, middleware.ValidationError{Field: "sort_order", Message: "Value must be one of: ASC DESC"})
		}
		query.SortOrder = order
	}

	if err := middleware.ValidateRequest(query); err != nil {
		fieldErrors = append(fieldErrors, middleware.FormatValidationErrors(err)...)
	}

	return query, fieldErrors
}

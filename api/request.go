package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/project-showcase-backend/errs"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewMalformedPayloadError("empty JSON", err)
		default:
			return errs.NewMalformedPayloadError("JSON", err)
		}
	}
	return nil
}

// projectIDParam parses the {projectID} route parameter.
func projectIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "projectID")
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing projectID")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError("projectID", "must be a UUID")
	}
	return id, nil
}

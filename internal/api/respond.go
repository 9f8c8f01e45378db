package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Madra/internal/aura"
	"github.com/MikeSquared-Agency/Madra/internal/catalog"
	"github.com/MikeSquared-Agency/Madra/internal/explorer"
)

type errorBody struct {
	Error       string                `json:"error"`
	Suggestions []string              `json:"suggestions,omitempty"`
	Fields      []explorer.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		verr *explorer.ValidationError
		nf   *catalog.NotFoundError
		uerr *aura.UnknownError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Fields: verr.Fields})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Suggestions: nf.Suggestions})
	case errors.As(err, &uerr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Suggestions: uerr.Suggestions})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "request cancelled"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decodeJSON reads the body into v. Unknown category names keep their
// suggestions; any other decode failure is reported as a bad body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var uerr *aura.UnknownError
		if errors.As(err, &uerr) {
			writeError(w, uerr)
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError renders err as a go-errors ErrorResponse. Errors that are not
// *goerrors.Error become internal errors.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *goerrors.Error
	if !goerrors.As(err, &appErr) {
		appErr = goerrors.Wrap(err, goerrors.CategoryInternal, "unexpected error")
	}

	out := *appErr
	status := StatusForCategory(out.Category)
	if out.Code != 0 && out.Code != status {
		meta := make(map[string]any, len(out.Metadata)+1)
		for k, v := range out.Metadata {
			meta[k] = v
		}
		meta["upstream_status"] = out.Code
		out.Metadata = meta
	}
	out.Code = status
	out.RequestID = middleware.GetReqID(r.Context())

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", out.RequestID)
	} else {
		s.logger.Debug("request rejected", "err", err, "request_id", out.RequestID)
	}

	respondJSON(w, status, out.ToErrorResponse(false, nil))
}

// StatusForCategory maps an error category to the HTTP status it is served with.
func StatusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

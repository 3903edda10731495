package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/consultologist/consultd/internal/domain"
	"github.com/consultologist/consultd/internal/domain/consult"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeDomainError(w http.ResponseWriter, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, fallbackMsg)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "resource was modified by another request")
	default:
		slog.Error("unhandled domain error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// statusForKind maps a workflow failure kind to its wire status. Validation
// problems are the caller's fault; timeouts mean the upstream never finished;
// everything between the service and the agent surfaces as a bad gateway.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuthentication, domain.KindUpstream, domain.KindRun, domain.KindExtraction:
		return http.StatusBadGateway
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default: // configuration, internal
		return http.StatusInternalServerError
	}
}

// writeWorkflowError renders a failed workflow invocation as a consult.Result
// so both outcomes share one response shape. Thread and run ids are included
// as far as the workflow got.
func writeWorkflowError(w http.ResponseWriter, err error) {
	res := consult.Result{Success: false, Error: err.Error()}
	status := http.StatusInternalServerError
	var we *domain.Error
	if errors.As(err, &we) {
		status = statusForKind(we.Kind)
		res.ThreadID = we.ThreadID
		res.RunID = we.RunID
	}
	writeJSON(w, status, res)
}

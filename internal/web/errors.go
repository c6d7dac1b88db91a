package web

// errors.go maps pipeline errors onto JSON error responses. The technical
// error is logged server-side with the request ID; clients get a stable
// machine-readable code and a short message.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carbontrace/carbontrace/internal/audit"
	"github.com/carbontrace/carbontrace/internal/store"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError classifies err, logs it, and writes the JSON error reply.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := classify(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	writeErrorResponse(w, status, code, msg)
}

// classify maps pipeline errors to an HTTP status, error code, and client
// message. Unknown errors become an opaque 500.
func classify(err error) (int, string, string) {
	var (
		cfgErr      *audit.ConfigError
		sectorErr   *audit.UnknownSectorError
		conflictErr *audit.SectorConflictError
		assemblyErr *audit.AssemblyError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest, "bad_config", cfgErr.Error()
	case errors.As(err, &sectorErr):
		return http.StatusUnprocessableEntity, "unknown_sector", sectorErr.Error()
	case errors.As(err, &conflictErr):
		return http.StatusUnprocessableEntity, "sector_conflict", conflictErr.Error()
	case errors.As(err, &assemblyErr):
		return http.StatusInternalServerError, "assembly_failed", "internal error"
	case errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound, "run_not_found", "audit run not found"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

// writeError logs and writes a JSON error reply for handler-level failures
// that are not pipeline errors (bad uploads, malformed parameters).
func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	slog.Warn("request rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"request_id", chimw.GetReqID(r.Context()),
	)
	writeErrorResponse(w, status, code, msg)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Code: code}); err != nil {
		slog.Error("json encode", "error", err)
	}
}

// writeJSON encodes v as JSON; encoding errors are logged since headers are
// already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode", "error", err)
	}
}

package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carbontrace/carbontrace/internal/audit"
	"github.com/carbontrace/carbontrace/internal/csvio"
	"github.com/carbontrace/carbontrace/internal/export"
	"github.com/carbontrace/carbontrace/internal/logging"
	"github.com/carbontrace/carbontrace/internal/store"
)

// auditResponse is the reply to a successful audit upload.
type auditResponse struct {
	RunID  uuid.UUID          `json:"run_id"`
	Report *audit.AuditReport `json:"report"`
}

// handleAudit runs a full audit over an uploaded CSV and stores the result.
// The file arrives either as multipart form field "file" or as a raw
// text/csv request body.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if err := s.limiter.acquire(r.Context()); err != nil {
		if errors.Is(err, ErrTooManyRuns) {
			w.Header().Set("Retry-After", "10")
			writeError(w, r, http.StatusServiceUnavailable, "busy", err.Error())
		} else {
			writeError(w, r, http.StatusBadRequest, "cancelled", err.Error())
		}
		return
	}
	defer s.limiter.release()

	maxSize := s.cfg.Audit.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	body, err := auditInput(r, maxSize)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_upload", err.Error())
		return
	}
	defer body.Close()

	auditor, err := s.requestAuditor(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	counted := csvio.NewCountingReader(body)
	rows, err := csvio.ReadRows(counted)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_csv", err.Error())
		return
	}

	start := time.Now()
	report, err := auditor.Run(rows)
	if err != nil {
		s.metrics.ObserveFailure()
		respondError(w, r, err)
		return
	}
	s.metrics.ObserveRun(report, time.Since(start).Seconds())

	rec, err := s.runs.SaveRun(r.Context(), "upload", report)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(),
		"run_id", rec.RunID,
		"bytes_read", counted.BytesRead(),
		"factories", rec.Factories,
		"breaches", rec.Breaches,
	).Info("audit run stored")

	writeJSON(w, auditResponse{RunID: rec.RunID, Report: report})
}

// auditInput extracts the CSV stream from the request.
func auditInput(r *http.Request, maxSize int64) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, fmt.Errorf("file too large or invalid form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("no file provided")
	}
	return file, nil
}

// requestAuditor returns the server's auditor, or a one-off auditor built
// from an optional "sectors" multipart upload (JSON or YAML catalog).
func (s *Server) requestAuditor(r *http.Request) (*audit.Auditor, error) {
	if r.MultipartForm == nil {
		return s.auditor, nil
	}
	file, header, err := r.FormFile("sectors")
	if err != nil {
		// Field absent: keep the configured catalog.
		return s.auditor, nil
	}
	defer file.Close()

	var catalog *audit.SectorCatalog
	if strings.HasSuffix(header.Filename, ".yaml") || strings.HasSuffix(header.Filename, ".yml") {
		catalog, err = audit.LoadCatalogYAML(file)
	} else {
		catalog, err = audit.LoadCatalogJSON(file)
	}
	if err != nil {
		return nil, err
	}
	return audit.NewAuditor(catalog, s.auditor.Params()), nil
}

// sectorView is the serialized form of one catalog entry.
type sectorView struct {
	SectorID         string  `json:"sector_id"`
	EmissionCap      float64 `json:"emission_cap"`
	EnergyMultiplier float64 `json:"energy_multiplier"`
}

// handleSectors lists the sector catalog in effect, sorted by sector id.
func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	defs := s.auditor.Catalog().Sectors()
	views := make([]sectorView, 0, len(defs))
	for _, def := range defs {
		views = append(views, sectorView{
			SectorID:         def.SectorID,
			EmissionCap:      def.EmissionCap,
			EnergyMultiplier: def.EnergyMultiplier,
		})
	}
	writeJSON(w, views)
}

// handleListRuns returns recent stored runs, newest first. The "limit"
// query parameter caps the count (default 50).
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "bad_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if recs == nil {
		recs = []store.RunRecord{}
	}
	writeJSON(w, recs)
}

// handleGetRun returns one stored run with its full report.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, report, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"run":    rec,
		"report": report,
	})
}

// handleExportSummary streams a stored run's per-factory summary as CSV.
func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	rec, report, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	serveCSV(w, r, "summary-"+rec.RunID.String()+".csv", func(dst io.Writer) error {
		return export.WriteSummaryCSV(dst, report)
	})
}

// handleExportCleaned streams a stored run's cleaned records as CSV.
func (s *Server) handleExportCleaned(w http.ResponseWriter, r *http.Request) {
	rec, report, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	serveCSV(w, r, "cleaned-"+rec.RunID.String()+".csv", func(dst io.Writer) error {
		return export.WriteCleanedCSV(dst, report)
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// loadRun parses the runID path parameter and loads the run, writing the
// error response itself on failure.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (rec store.RunRecord, report *audit.AuditReport, ok bool) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_run_id", "run ID must be a UUID")
		return rec, nil, false
	}

	rec, report, err = s.runs.GetRun(r.Context(), runID)
	if err != nil {
		respondError(w, r, err)
		return rec, nil, false
	}
	return rec, report, true
}

func serveCSV(w http.ResponseWriter, r *http.Request, filename string, write func(io.Writer) error) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := write(w); err != nil {
		// Headers are already sent; nothing to do but log.
		slog.Error("csv export", "path", r.URL.Path, "error", err)
	}
}

package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Daemonaise/studio/internal/estimate"
	"github.com/Daemonaise/studio/internal/mesh"
	"github.com/Daemonaise/studio/internal/quote"
)

// maxUploadBytes caps mesh uploads. Production meshes rarely exceed a
// few hundred megabytes of triangles; anything larger is rejected
// before parsing.
const maxUploadBytes = 256 << 20

type server struct {
	engine    *quote.Engine
	pricing   quote.PricingConfig
	estimator estimate.Estimator
}

type apiError struct {
	Error string `json:"error"`
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze parses an uploaded mesh file and returns its metrics.
func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	metrics, ok := s.analyzeUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// handleQuote runs the full pipeline: parse the mesh, estimate the
// print baseline, and price the job.
func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	metrics, ok := s.analyzeUpload(w, r)
	if !ok {
		return
	}

	filamentID := strings.TrimSpace(r.FormValue("material"))
	if filamentID == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "material is required"})
		return
	}
	nozzle := strings.TrimSpace(r.FormValue("nozzle"))
	if nozzle == "" {
		nozzle = "0.4"
	}
	// Auto-selection is on unless the caller passes auto=0 to pin the
	// named printer.
	preferred := strings.TrimSpace(r.FormValue("printer"))
	autoSelect := r.FormValue("auto") != "0"

	baseline, err := s.estimator.Estimate(r.Context(), metrics, filamentID, nozzle)
	if err != nil {
		slog.Error("estimator failed", "error", err)
		writeJSON(w, http.StatusBadGateway, apiError{Error: "estimate unavailable: " + err.Error()})
		return
	}

	q, err := s.engine.Quote(quote.Request{
		Metrics:          metrics,
		FilamentID:       filamentID,
		NozzleSize:       nozzle,
		AutoSelect:       autoSelect,
		PreferredPrinter: preferred,
		Baseline:         baseline,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, quote.ErrNoCompatibleMaterial) || errors.Is(err, quote.ErrNoCompatiblePrinter) {
			status = http.StatusConflict
		}
		writeJSON(w, status, apiError{Error: err.Error()})
		return
	}

	slog.Info("quoted job",
		"quote", q.ID,
		"printer", q.PrinterKey,
		"segments", q.Segments,
		"total", q.Costs.Total)
	writeJSON(w, http.StatusOK, q)
}

// handleCatalog exposes the pricing configuration snapshot the server
// quotes against.
func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pricing)
}

// analyzeUpload reads the multipart "file" part and parses it. On
// failure it writes the error response and returns ok=false.
func (s *server) analyzeUpload(w http.ResponseWriter, r *http.Request) (*mesh.Metrics, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form: " + err.Error()})
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing file upload"})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "read upload: " + err.Error()})
		return nil, false
	}

	metrics, err := mesh.Analyze(header.Filename, data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return nil, false
	}
	return metrics, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

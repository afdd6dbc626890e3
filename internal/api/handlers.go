package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nicka06/monketer/internal/differ"
	"github.com/nicka06/monketer/internal/metrics"
	"github.com/nicka06/monketer/internal/template"
)

// maxBodyBytes caps request bodies on the engine endpoints. Pasted email
// HTML rarely exceeds a few hundred KB; 5MB leaves room for image-heavy
// markup without letting a client exhaust memory.
const maxBodyBytes = 5 << 20

// ParseRequest is the request body for POST /parse
type ParseRequest struct {
	HTML string `json:"html"`
}

// GenerateRequest is the request body for POST /generate
type GenerateRequest struct {
	Template *template.Template `json:"template"`
}

// GenerateResponse is the response for POST /generate
type GenerateResponse struct {
	HTML string `json:"html"`
}

// DiffRequest is the request body for POST /diff
type DiffRequest struct {
	Old *template.Template `json:"old"`
	New *template.Template `json:"new"`
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Templates int    `json:"templates"`
}

// ErrorResponse is the error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleParse handles POST /api/v1/parse
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return
	}
	if req.HTML == "" {
		s.sendError(w, http.StatusBadRequest, "html is required")
		return
	}

	start := time.Now()
	tpl, err := s.parser.Parse(req.HTML)
	if err != nil {
		metrics.ObserveOperation("parse", "error", time.Since(start))
		s.sendError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	metrics.ObserveOperation("parse", "ok", time.Since(start))

	s.sendJSON(w, http.StatusOK, tpl)
}

// handleGenerate handles POST /api/v1/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return
	}
	if req.Template == nil {
		s.sendError(w, http.StatusBadRequest, "template is required")
		return
	}
	if err := req.Template.Validate(); err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	html := s.generator.Generate(req.Template)
	metrics.ObserveOperation("generate", "ok", time.Since(start))

	s.sendJSON(w, http.StatusOK, GenerateResponse{HTML: html})
}

// handleDiff handles POST /api/v1/diff
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return
	}
	if req.Old == nil || req.New == nil {
		s.sendError(w, http.StatusBadRequest, "old and new templates are required")
		return
	}

	start := time.Now()
	result, err := differ.Diff(req.Old, req.New)
	if err != nil {
		metrics.ObserveOperation("diff", "error", time.Since(start))
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.ObserveOperation("diff", "ok", time.Since(start))

	s.sendJSON(w, http.StatusOK, result)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count := 0
	if stats, err := s.store.Stats(r.Context()); err == nil {
		count = stats.Total
	}

	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   "0.1.0",
		Uptime:    time.Since(s.startTime).String(),
		Templates: count,
	})
}

// decodeBody decodes a JSON request body, writing the error response itself
// on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return err
	}
	return nil
}

// sendJSON sends a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}

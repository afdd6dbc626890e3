package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nicka06/monketer/internal/differ"
	"github.com/nicka06/monketer/internal/metrics"
	"github.com/nicka06/monketer/internal/store"
	"github.com/nicka06/monketer/internal/template"
)

// TemplateSummary is a list entry for GET /templates
type TemplateSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Revision  int       `json:"revision"`
	Sections  int       `json:"sections"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListTemplatesResponse is the response for GET /templates
type ListTemplatesResponse struct {
	Templates []TemplateSummary `json:"templates"`
	Total     int               `json:"total"`
}

// VersionSummary is a list entry for GET /templates/{id}/versions
type VersionSummary struct {
	Revision  int       `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SendPreviewRequest is the request body for POST /templates/{id}/send
type SendPreviewRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
}

// handleListTemplates handles GET /api/v1/templates
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	filter := store.ListFilter{
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.sendError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		filter.Offset = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.sendError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	records, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list templates", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	summaries := make([]TemplateSummary, len(records))
	for i, rec := range records {
		summaries[i] = summarize(rec)
	}

	s.sendJSON(w, http.StatusOK, ListTemplatesResponse{
		Templates: summaries,
		Total:     len(summaries),
	})
}

// handleCreateTemplate handles POST /api/v1/templates
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl template.Template
	if err := s.decodeBody(w, r, &tpl); err != nil {
		return
	}

	rec, err := s.store.Create(r.Context(), &tpl)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("template created", "id", rec.Template.ID, "name", rec.Template.Name)
	s.sendJSON(w, http.StatusCreated, rec)
}

// handleGetTemplate handles GET /api/v1/templates/{id}
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	rec := s.lookupTemplate(w, r)
	if rec == nil {
		return
	}
	s.sendJSON(w, http.StatusOK, rec)
}

// handleUpdateTemplate handles PUT /api/v1/templates/{id}
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var tpl template.Template
	if err := s.decodeBody(w, r, &tpl); err != nil {
		return
	}

	// The path wins over any id in the body.
	tpl.ID = id

	existing, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get template", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}
	if existing == nil {
		s.sendError(w, http.StatusNotFound, "Template not found")
		return
	}

	rec, err := s.store.Update(r.Context(), &tpl)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("template updated", "id", id, "revision", rec.Revision)
	s.sendJSON(w, http.StatusOK, rec)
}

// handleDeleteTemplate handles DELETE /api/v1/templates/{id}
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	rec := s.lookupTemplate(w, r)
	if rec == nil {
		return
	}

	if err := s.store.Delete(r.Context(), rec.Template.ID); err != nil {
		s.logger.Error("failed to delete template", "id", rec.Template.ID, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}

	s.logger.Info("template deleted", "id", rec.Template.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleRenderTemplate handles GET /api/v1/templates/{id}/html
func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	rec := s.lookupTemplate(w, r)
	if rec == nil {
		return
	}

	start := time.Now()
	html := s.generator.Generate(&rec.Template)
	metrics.ObserveOperation("generate", "ok", time.Since(start))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// handleListVersions handles GET /api/v1/templates/{id}/versions
func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	rec := s.lookupTemplate(w, r)
	if rec == nil {
		return
	}

	records, err := s.store.Versions(r.Context(), rec.Template.ID)
	if err != nil {
		s.logger.Error("failed to list versions", "id", rec.Template.ID, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list versions")
		return
	}

	summaries := make([]VersionSummary, len(records))
	for i, v := range records {
		summaries[i] = VersionSummary{Revision: v.Revision, UpdatedAt: v.UpdatedAt}
	}

	s.sendJSON(w, http.StatusOK, summaries)
}

// handleGetVersion handles GET /api/v1/templates/{id}/versions/{revision}
func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	rec := s.lookupTemplate(w, r)
	if rec == nil {
		return
	}

	revision, ok := s.parseRevision(w, r)
	if !ok {
		return
	}

	version, err := s.store.GetVersion(r.Context(), rec.Template.ID, revision)
	if err != nil {
		s.logger.Error("failed to get version", "id", rec.Template.ID, "revision", revision, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get version")
		return
	}
	if version == nil {
		s.sendError(w, http.StatusNotFound, fmt.Sprintf("Revision %d not found", revision))
		return
	}

	s.sendJSON(w, http.StatusOK, version)
}

// handleVersionDiff handles GET /api/v1/templates/{id}/versions/{revision}/diff
// and reports what changed between the named revision and the current one.
func (s *Server) handleVersionDiff(w http.ResponseWriter, r *http.Request) {
	rec := s.lookupTemplate(w, r)
	if rec == nil {
		return
	}

	revision, ok := s.parseRevision(w, r)
	if !ok {
		return
	}

	version, err := s.store.GetVersion(r.Context(), rec.Template.ID, revision)
	if err != nil {
		s.logger.Error("failed to get version", "id", rec.Template.ID, "revision", revision, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get version")
		return
	}
	if version == nil {
		s.sendError(w, http.StatusNotFound, fmt.Sprintf("Revision %d not found", revision))
		return
	}

	start := time.Now()
	result, err := differ.Diff(&version.Template, &rec.Template)
	if err != nil {
		metrics.ObserveOperation("diff", "error", time.Since(start))
		s.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.ObserveOperation("diff", "ok", time.Since(start))

	s.sendJSON(w, http.StatusOK, result)
}

// handleSendPreview handles POST /api/v1/templates/{id}/send
func (s *Server) handleSendPreview(w http.ResponseWriter, r *http.Request) {
	if s.sender == nil {
		s.sendError(w, http.StatusServiceUnavailable, "Preview delivery is not configured")
		return
	}

	rec := s.lookupTemplate(w, r)
	if rec == nil {
		return
	}

	var req SendPreviewRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		return
	}
	if len(req.To) == 0 {
		s.sendError(w, http.StatusBadRequest, "to is required")
		return
	}

	subject := req.Subject
	if subject == "" {
		subject = fmt.Sprintf("[Preview] %s", rec.Template.Name)
	}

	html := s.generator.Generate(&rec.Template)

	if err := s.sender.SendPreview(r.Context(), req.To, subject, html); err != nil {
		metrics.IncPreviewSends("error")
		s.logger.Error("preview send failed", "id", rec.Template.ID, "error", err)
		s.sendError(w, http.StatusBadGateway, err.Error())
		return
	}
	metrics.IncPreviewSends("ok")

	s.logger.Info("preview sent", "id", rec.Template.ID, "to", req.To)
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// lookupTemplate resolves the {id} path parameter, writing the error
// response itself when the template cannot be served.
func (s *Server) lookupTemplate(w http.ResponseWriter, r *http.Request) *store.Record {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.sendError(w, http.StatusBadRequest, "id is required")
		return nil
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get template", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get template")
		return nil
	}
	if rec == nil {
		s.sendError(w, http.StatusNotFound, "Template not found")
		return nil
	}
	return rec
}

func (s *Server) parseRevision(w http.ResponseWriter, r *http.Request) (int, bool) {
	revision, err := strconv.Atoi(chi.URLParam(r, "revision"))
	if err != nil || revision < 1 {
		s.sendError(w, http.StatusBadRequest, "invalid revision")
		return 0, false
	}
	return revision, true
}

func summarize(rec *store.Record) TemplateSummary {
	return TemplateSummary{
		ID:        rec.Template.ID,
		Name:      rec.Template.Name,
		Revision:  rec.Revision,
		Sections:  len(rec.Template.Sections),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

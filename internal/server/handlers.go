// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/scholar-digest/internal/credential"
	"github.com/pdiddy/scholar-digest/internal/export"
	"github.com/pdiddy/scholar-digest/internal/search"
	"github.com/pdiddy/scholar-digest/internal/session"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// headerExportFailed reports how many entries failed to summarize.
const headerExportFailed = "X-Export-Failed"

type searchRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

type toggleRequest struct {
	ID string `json:"id" validate:"required"`
}

type exportRequest struct {
	Summarize bool   `json:"summarize"`
	Format    string `json:"format" validate:"omitempty,oneof=docx markdown"`
}

type credentialRequest struct {
	Key string `json:"key" validate:"required"`
}

type toggleResponse struct {
	session.ToggleResult
	View session.View `json:"view"`
}

// searchHandler handles POST /api/search. A failed search still returns the
// view, which carries the failure status and any partial results.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctrl := controllerFrom(r.Context())
	view, err := ctrl.Search(r.Context(), req.Query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", req.Query).Msg("search failed")
		if errors.Is(err, search.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			// Transport failures reaching the upstream API.
			status = http.StatusBadGateway
		}
		writeJSON(w, status, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// viewHandler handles GET /api/view?year=<year|all>. Without a year
// parameter the current filter is kept.
func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r.Context())

	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		writeJSON(w, http.StatusOK, ctrl.View())
		return
	}

	year, err := parseYear(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	view, err := ctrl.SetYearFilter(year)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func parseYear(raw string) (int, error) {
	if strings.EqualFold(raw, "all") {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("year must be a positive integer or \"all\"")
	}
	return year, nil
}

// toggleHandler handles POST /api/selection/toggle.
func (s *Server) toggleHandler(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctrl := controllerFrom(r.Context())
	res, err := ctrl.Toggle(req.ID)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ToggleResult: res, View: ctrl.View()})
}

// copyHandler handles GET /api/records/copy?id=.
func (s *Server) copyHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, err := controllerFrom(r.Context()).Record(id)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(session.CopyText(rec)))
}

// exportHandler handles POST /api/export and streams the built document.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.deps.Pipeline == nil {
		writeError(w, http.StatusBadRequest, export.ErrNoBuilder.Error())
		return
	}

	format := s.deps.DefaultFormat
	if req.Format != "" {
		format = types.ExportFormat(req.Format)
	}

	selected := controllerFrom(r.Context()).Selected()
	if req.Summarize {
		// Summaries run one at a time; widen the write deadline to cover them.
		budget := exportBudget(len(selected), s.deps.SummaryTimeout, s.cfg.WriteTimeout)
		if budget > 0 {
			rc := http.NewResponseController(w)
			if err := rc.SetWriteDeadline(time.Now().Add(budget)); err != nil {
				s.logger.Debug().Err(err).Msg("cannot extend export write deadline")
			}
		}
	}
	art, err := s.deps.Pipeline.Run(r.Context(), selected, export.Options{
		Format:    format,
		Summarize: req.Summarize,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("format", string(format)).Msg("export failed")
		writeError(w, errorStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set(headerExportFailed, strconv.Itoa(art.Failed()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// setCredentialHandler handles PUT /api/credential.
func (s *Server) setCredentialHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Credentials == nil {
		writeError(w, http.StatusNotImplemented, "credential store not configured")
		return
	}

	var req credentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := credential.Validate(s.provider(), req.Key); err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}
	if err := s.deps.Credentials.Set(r.Context(), credential.KeyName(s.provider()), req.Key); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearCredentialHandler handles DELETE /api/credential.
func (s *Server) clearCredentialHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Credentials == nil {
		writeError(w, http.StatusNotImplemented, "credential store not configured")
		return
	}
	if err := s.deps.Credentials.Clear(r.Context(), credential.KeyName(s.provider())); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) provider() types.SummaryProvider {
	if s.deps.Provider == "" {
		return types.ProviderOpenAI
	}
	return s.deps.Provider
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	var statusErr *search.StatusError
	switch {
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, export.ErrNoBuilder),
		errors.Is(err, export.ErrNoSummarizer):
		return http.StatusBadRequest
	case errors.Is(err, credential.ErrMissingCredential),
		errors.Is(err, credential.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrUnknownRecord):
		return http.StatusNotFound
	case errors.Is(err, export.ErrNoSelection),
		errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, search.ErrMalformedResponse),
		errors.As(err, &statusErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// exportBudget is the write deadline for an export summarizing n records:
// the configured write timeout plus one summary timeout per record. Zero
// means no deadline is set.
func exportBudget(n int, perSummary, base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if perSummary <= 0 || n <= 0 {
		return base
	}
	return base + time.Duration(n)*perSummary
}

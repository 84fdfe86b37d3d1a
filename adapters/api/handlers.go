package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"tradestats/adapters/report"
	"tradestats/app"
	"tradestats/internal/analysis/groups"
	"tradestats/internal/errors"
)

// PlotParams overrides the plot defaults of a comparison.
type PlotParams struct {
	Format  groups.PlotFormat `json:"format,omitempty"`
	Title   string            `json:"title,omitempty"`
	XLabel  string            `json:"x_label,omitempty"`
	Density *bool             `json:"density,omitempty"`
	Width   int               `json:"width,omitempty"`
	Height  int               `json:"height,omitempty"`
}

// PlotRequest is a comparison request plus plot options.
type PlotRequest struct {
	app.ComparisonRequest
	Plot PlotParams `json:"plot"`
}

// BatchRequest runs several comparisons at once.
type BatchRequest struct {
	Comparisons []app.ComparisonRequest `json:"comparisons"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCompare runs one comparison and returns the outcome as JSON.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req app.ComparisonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.service.Compare(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

// handleCompareBatch runs independent comparisons concurrently.
func (s *Server) handleCompareBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Comparisons) == 0 {
		s.writeError(w, r, errors.InvalidInput("comparisons must not be empty"))
		return
	}

	outcomes, err := s.service.CompareAll(r.Context(), req.Comparisons)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"comparisons": outcomes})
}

// handleReport runs one comparison and returns an HTML report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req app.ComparisonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.service.Compare(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(outcome))
}

// handlePlot runs one comparison and returns the overlaid histograms.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	var req PlotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	outcome, err := s.service.Compare(r.Context(), req.ComparisonRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.service.PlotOptions(outcome)
	applyPlotParams(&opts, req.Plot)

	// Render into a buffer so a failure can still produce an error response.
	var buf bytes.Buffer
	if err := outcome.Plot(&buf, opts); err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType := "image/svg+xml"
	if opts.Format == groups.PlotPNG {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func applyPlotParams(opts *groups.PlotOptions, p PlotParams) {
	if p.Format != "" {
		opts.Format = p.Format
	}
	if p.Title != "" {
		opts.Title = p.Title
	}
	if p.XLabel != "" {
		opts.XLabel = p.XLabel
	}
	if p.Density != nil {
		opts.Density = *p.Density
	}
	if p.Width > 0 {
		opts.Width = p.Width
	}
	if p.Height > 0 {
		opts.Height = p.Height
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errors.InvalidInput("request body is empty")
		}
		return errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

// writeJSON encodes body before writing the status, so an unencodable body
// becomes a 500 instead of an empty 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		s.logger.Error("[API] failed to encode response: %v", err)
		appErr := errors.InternalError("failed to encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		json.NewEncoder(&buf).Encode(ErrorResponse{Code: appErr.Code, Message: appErr.Message})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// writeError classifies err and writes it as an ErrorResponse.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = errors.FromDomain(err)
	status := errors.HTTPStatus(err)

	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %s %s: %v", r.Method, r.URL.Path, err)
	} else {
		s.logger.Debug("[API] %s %s: %v", r.Method, r.URL.Path, err)
	}

	s.writeJSON(w, status, ErrorResponse{
		Code:      errors.GetCode(err),
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

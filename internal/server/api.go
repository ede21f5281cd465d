package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/feedback"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/slug"
	"git.home.luguber.info/inful/docsite/internal/version"
)

const maxFeedbackBody = 16 << 10

// ParamsEntry is one element of the static generation contract.
type ParamsEntry struct {
	Slug []string `json:"slug"`
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	URL     string `json:"url"`
	Opinion string `json:"opinion"`
	Message string `json:"message"`
}

// FeedbackResponse acknowledges an accepted submission.
type FeedbackResponse struct {
	Status string `json:"status"`
}

// HealthResponse is served by the liveness endpoints.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Documents int       `json:"documents"`
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	sl := slug.FromKey(r.URL.Query().Get("slug"))
	md, err := s.resolver.ResolveMetadata(sl)
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, md)
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	params := s.resolver.GenerateParams()
	out := make([]ParamsEntry, len(params))
	for i, p := range params {
		out[i] = ParamsEntry{Slug: append([]string{}, p...)}
	}
	s.writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackBody))
	if err := dec.Decode(&req); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("malformed feedback body").
			WithCause(err).
			Build())
		return
	}

	pageURL := strings.TrimSpace(req.URL)
	if pageURL == "" {
		pageURL = r.Referer()
	}
	if pageURL == "" {
		s.adapter.WriteErrorResponse(w, r, ferrors.ValidationError("page url is required").Build())
		return
	}

	err := s.opts.Feedback.SubmitFeedback(pageURL, feedback.Payload{
		Opinion: feedback.Opinion(req.Opinion),
		Message: req.Message,
	})
	if errors.Is(err, feedback.ErrDispatcherClosed) {
		err = ferrors.RuntimeError("feedback capture is shutting down").
			WithCause(err).
			Warning().
			Build()
	}
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusAccepted, FeedbackResponse{Status: "accepted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.startedAt).Seconds(),
		Documents: s.store.Len(),
	})
}

// handleReady reports ready once an index has been published.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store.Current() == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "not ready: content index not loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ready")
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.shell.WriteSitemap(&buf, s.resolver.GenerateParams()); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.InternalError("sitemap generation failed").WithCause(err).Build())
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.shell.WriteRobots(&buf); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.InternalError("robots generation failed").WithCause(err).Build())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// writeJSON encodes into a buffer first so an encode failure never leaves a
// partial body behind.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.InternalError("encode response failed").WithCause(err).Build())
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("Write JSON response failed", logfields.Path(r.URL.Path), logfields.Error(err))
	}
}

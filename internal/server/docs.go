package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/resolver"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

const htmlContentType = "text/html; charset=utf-8"

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	sl, ok := slug.Parse(r.URL.EscapedPath(), s.basePath)
	if !ok {
		s.renderNotFound(w, r)
		return
	}

	ri, err := s.resolver.ResolvePage(sl)
	if errors.Is(err, resolver.ErrNotFound) {
		s.renderNotFound(w, r)
		return
	}
	if err != nil {
		s.adapter.WriteErrorResponse(w, r, err)
		return
	}

	etag := ""
	if ri.Fingerprint != "" {
		etag = `"` + ri.Fingerprint + `"`
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Cache-Control", "no-cache")
	if etag != "" && etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := s.shell.RenderPage(&buf, ri, s.nav()); err != nil {
		s.adapter.WriteErrorResponse(w, r, ferrors.RenderError("page render failed").
			WithCause(err).
			WithContext("slug", sl.String()).
			Build())
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("Write page response failed", logfields.Slug(sl.Key()), logfields.Error(err))
	}
}

// handleNotFound answers unmatched routes: JSON under /api, the site 404
// page everywhere else.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		s.adapter.WriteErrorResponse(w, r, ferrors.NotFoundError("route not found").
			WithContext("path", r.URL.Path).
			Build())
		return
	}
	s.renderNotFound(w, r)
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.shell.RenderNotFound(&buf, r.URL.Path, s.nav()); err != nil {
		s.logger.Error("Render not-found page failed", logfields.Path(r.URL.Path), logfields.Error(err))
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.WriteHeader(http.StatusNotFound)
	_, _ = buf.WriteTo(w)
}

func (s *Server) nav() []site.NavItem {
	return site.BuildNav(s.store.Current(), s.basePath)
}

// etagMatches implements the weak comparison used for If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

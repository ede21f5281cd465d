package site

import (
	"encoding/xml"
	"fmt"
	"io"

	"git.home.luguber.info/inful/docsite/internal/slug"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// WriteSitemap writes a sitemap listing every slug. Locations are absolute
// when the site URL is configured, otherwise rooted paths.
func (s *Shell) WriteSitemap(w io.Writer, slugs []slug.Slug) error {
	set := urlSet{XMLNS: sitemapNS, URLs: make([]sitemapURL, 0, len(slugs))}
	for _, sl := range slugs {
		p := sl.URL(s.cfg.BasePath)
		loc := s.absolute(p)
		if loc == "" {
			loc = p
		}
		set.URLs = append(set.URLs, sitemapURL{Loc: loc})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// WriteRobots writes a permissive robots.txt pointing at the sitemap.
func (s *Shell) WriteRobots(w io.Writer) error {
	sitemap := s.absolute("/sitemap.xml")
	if sitemap == "" {
		sitemap = "/sitemap.xml"
	}
	_, err := fmt.Fprintf(w, "User-agent: *\nAllow: /\n\nSitemap: %s\n", sitemap)
	return err
}

package site

import (
	"encoding/json"
	"html/template"
)

type webSite struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
}

type organization struct {
	Context string   `json:"@context"`
	Type    string   `json:"@type"`
	Name    string   `json:"name"`
	URL     string   `json:"url,omitempty"`
	Logo    string   `json:"logo,omitempty"`
	SameAs  []string `json:"sameAs,omitempty"`
}

// StructuredData returns the JSON-LD WebSite and Organization objects
// embedded in every page head.
func StructuredData(cfg Config) ([]byte, error) {
	name := cfg.Organization
	if name == "" {
		name = cfg.Title
	}
	return json.Marshal([]any{
		webSite{
			Context:     "https://schema.org",
			Type:        "WebSite",
			Name:        cfg.Title,
			URL:         cfg.URL,
			Description: cfg.Description,
		},
		organization{
			Context: "https://schema.org",
			Type:    "Organization",
			Name:    name,
			URL:     cfg.URL,
			Logo:    cfg.Logo,
			SameAs:  cfg.SameAs,
		},
	})
}

// json.Marshal escapes <, > and & so the payload is safe inside <script>.
func jsonLDScript(cfg Config) (template.JS, error) {
	b, err := StructuredData(cfg)
	if err != nil {
		return "", err
	}
	// #nosec G203 -- encoding/json output with HTML escaping.
	return template.JS(b), nil
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/docsite/internal/resolver"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	JSON bool `name:"json" help:"Print the params list as JSON"`
}

type routeEntry struct {
	Slug []string `json:"slug"`
	URL  string   `json:"url"`
}

func (r *RoutesCmd) Run(_ *Global, root *CLI) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}
	idx, _, err := prepareContent(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	params := resolver.New(idx, resolver.WithLogger(logger)).GenerateParams()
	return writeRoutes(os.Stdout, params, cfg.Site.BasePath, r.JSON)
}

func writeRoutes(w io.Writer, params []slug.Slug, basePath string, asJSON bool) error {
	if asJSON {
		entries := make([]routeEntry, 0, len(params))
		for _, s := range params {
			entries = append(entries, routeEntry{Slug: append([]string{}, s...), URL: s.URL(basePath)})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	for _, s := range params {
		if _, err := fmt.Fprintln(w, s.URL(basePath)); err != nil {
			return err
		}
	}
	return nil
}

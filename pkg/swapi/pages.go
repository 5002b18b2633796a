package swapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/holocron/pkg/logger"
)

// Walk fetches resource page by page starting at 1 and hands every page to fn.
// The next page is requested only after fn returns, and only while the current
// page carries a next marker. An error from fn stops the walk.
func Walk(ctx context.Context, ds DataSource, resource string, fn func(page int, results []json.RawMessage) error) error {
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := ds.FetchPage(ctx, resource, page)
		if err != nil {
			return fmt.Errorf("Failed to fetch %s page %d: %w", resource, page, err)
		}
		if err := fn(page, p.Results); err != nil {
			return err
		}
		if !p.HasNext() {
			return nil
		}
	}
}

// FetchAll returns every record of resource in page order.
func FetchAll(ctx context.Context, ds DataSource, resource string) ([]json.RawMessage, error) {
	all := make([]json.RawMessage, 0)
	err := Walk(ctx, ds, resource, func(_ int, results []json.RawMessage) error {
		all = append(all, results...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// FetchFilms returns the full film collection decoded, in catalog order.
// Records that are not objects are logged and skipped.
func FetchFilms(ctx context.Context, ds DataSource) ([]Film, error) {
	raws, err := FetchAll(ctx, ds, ResourceFilms)
	if err != nil {
		return nil, err
	}
	films := make([]Film, 0, len(raws))
	for i, raw := range raws {
		f, err := DecodeFilm(raw)
		if err != nil {
			logger.Warn("Skipping malformed film record", "index", i, "error", err)
			continue
		}
		films = append(films, f)
	}
	return films, nil
}

package stats

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/OFFIS-RIT/holocron/pkg/logger"
	"github.com/OFFIS-RIT/holocron/pkg/swapi"

	"golang.org/x/sync/errgroup"
)

// TopSpeciesLimit is how many species FilmEngine reports.
const TopSpeciesLimit = 3

type SpeciesAppearances struct {
	Name        string `json:"name"`
	Appearances int    `json:"number_of_appearances"`
}

// FilmStats is the film half of the final result.
type FilmStats struct {
	LongestCrawlTitle     string
	MostFrequentCharacter string
	TopSpecies            []SpeciesAppearances
}

// FilmTallies holds what a single pass over the films accumulates before any
// reference is resolved.
type FilmTallies struct {
	LongestCrawlTitle string
	Characters        *Tally[swapi.Reference]
	Species           *Tally[swapi.Reference]
}

// TallyFilms scans films once, in order.
//
// The longest crawl is measured in characters and only a strictly longer crawl
// replaces the current leader, so the earliest film wins a tie.
func TallyFilms(films []swapi.Film) FilmTallies {
	t := FilmTallies{
		Characters: NewTally[swapi.Reference](),
		Species:    NewTally[swapi.Reference](),
	}

	longest := -1
	for _, film := range films {
		if n := utf8.RuneCountInString(film.OpeningCrawl); n > longest {
			longest = n
			t.LongestCrawlTitle = film.Title
		}
		for _, c := range film.Characters {
			t.Characters.Inc(c)
		}
		for _, s := range film.Species {
			t.Species.Inc(s)
		}
	}
	return t
}

// FilmEngine derives the film statistics and resolves the winning references
// to display names.
type FilmEngine struct {
	Source swapi.DataSource
}

func NewFilmEngine(source swapi.DataSource) *FilmEngine {
	return &FilmEngine{Source: source}
}

// Compute tallies films and resolves the most frequent character and the top
// species. Every name in the output is required, so any resolution failure
// fails the whole computation. Empty tallies resolve nothing.
func (e *FilmEngine) Compute(ctx context.Context, films []swapi.Film) (FilmStats, error) {
	tallies := TallyFilms(films)
	top := tallies.Species.Top(TopSpeciesLimit)
	res := FilmStats{
		LongestCrawlTitle: tallies.LongestCrawlTitle,
		TopSpecies:        make([]SpeciesAppearances, len(top)),
	}

	g, gCtx := errgroup.WithContext(ctx)

	if ref, count, ok := tallies.Characters.Max(); ok {
		g.Go(func() error {
			named, err := swapi.Resolve(gCtx, e.Source, ref)
			if err != nil {
				return fmt.Errorf("Failed to resolve most frequent character %s: %w", ref, err)
			}
			logger.Debug("Most frequent character", "name", named.Name, "films", count)
			res.MostFrequentCharacter = named.Name
			return nil
		})
	}

	for i, entry := range top {
		g.Go(func() error {
			named, err := swapi.Resolve(gCtx, e.Source, entry.Key)
			if err != nil {
				return fmt.Errorf("Failed to resolve species %s: %w", entry.Key, err)
			}
			res.TopSpecies[i] = SpeciesAppearances{Name: named.Name, Appearances: entry.Count}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return FilmStats{}, err
	}
	return res, nil
}

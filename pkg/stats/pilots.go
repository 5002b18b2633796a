package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/holocron/pkg/logger"
	"github.com/OFFIS-RIT/holocron/pkg/swapi"

	"golang.org/x/sync/errgroup"
)

// DefaultParallel bounds per-page person enrichment when PilotEngine.Parallel is unset.
const DefaultParallel = 8

// PilotStats is the planet half of the final result.
type PilotStats struct {
	// TopPlanet is nil when nobody in the catalog pilots a vehicle.
	TopPlanet   *PlanetRoster
	Rosters     []PlanetRoster
	Diagnostics []Diagnostic
}

// PilotEngine walks the people collection and finds the homeworld that
// supplies the most distinct vehicle pilots.
type PilotEngine struct {
	Source   swapi.DataSource
	Parallel int
}

func NewPilotEngine(source swapi.DataSource, parallel int) *PilotEngine {
	return &PilotEngine{Source: source, Parallel: parallel}
}

type enrichment struct {
	qualified bool
	planetRef swapi.Reference
	planet    string
	pilot     Pilot
	diags     []Diagnostic
}

// Compute processes the people collection one page at a time. The people on a
// page are enriched concurrently and all of them finish before the next page
// is requested. Page results are merged in catalog order.
//
// Failures to resolve one person's homeworld or species are recorded as
// diagnostics. Page fetch failures and cancellation abort the computation.
func (e *PilotEngine) Compute(ctx context.Context) (PilotStats, error) {
	rosters := NewRosters()
	diags := make([]Diagnostic, 0)

	err := swapi.Walk(ctx, e.Source, swapi.ResourcePeople, func(page int, results []json.RawMessage) error {
		outcomes, err := e.enrichPage(ctx, page, results)
		if err != nil {
			return err
		}

		added := 0
		for _, o := range outcomes {
			diags = append(diags, o.diags...)
			if o.qualified && rosters.Add(o.planetRef, o.planet, o.pilot) {
				added++
			}
		}
		logger.Debug("Processed people page", "page", page, "people", len(results), "new_pilots", added, "planets", rosters.Len())
		return nil
	})
	if err != nil {
		return PilotStats{}, err
	}

	res := PilotStats{
		Rosters:     rosters.Snapshot(),
		Diagnostics: diags,
	}
	if top, ok := rosters.Top(); ok {
		res.TopPlanet = &top
	}
	return res, nil
}

func (e *PilotEngine) enrichPage(ctx context.Context, page int, results []json.RawMessage) ([]enrichment, error) {
	parallel := e.Parallel
	if parallel <= 0 {
		parallel = DefaultParallel
	}

	slots := make([]enrichment, len(results))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, raw := range results {
		g.Go(func() error {
			out, err := e.enrichPerson(gCtx, page, raw)
			if err != nil {
				return err
			}
			slots[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Failed to process people page %d: %w", page, err)
	}
	return slots, nil
}

// enrichPerson returns an error only when the whole computation must stop.
func (e *PilotEngine) enrichPerson(ctx context.Context, page int, raw json.RawMessage) (enrichment, error) {
	person, err := swapi.DecodePerson(raw)
	if err != nil {
		return skip(page, DiagnosticMalformedPerson, "", "", err), nil
	}
	if !person.IsPilot() {
		return enrichment{}, nil
	}

	if person.Homeworld == "" {
		return skip(page, DiagnosticHomeworldMissing, person.Name, "", errors.New("No homeworld recorded")), nil
	}
	home, err := swapi.Resolve(ctx, e.Source, person.Homeworld)
	if err != nil {
		if isFatal(err) {
			return enrichment{}, err
		}
		return skip(page, DiagnosticHomeworldMissing, person.Name, person.Homeworld, err), nil
	}

	out := enrichment{
		qualified: true,
		planetRef: person.Homeworld,
		planet:    home.Name,
		pilot:     Pilot{Name: person.Name, Species: UnknownSpecies},
	}

	ref, ok := person.PrimarySpecies()
	if !ok {
		return out, nil
	}
	species, err := swapi.Resolve(ctx, e.Source, ref)
	if err != nil {
		if isFatal(err) {
			return enrichment{}, err
		}
		out.diags = append(out.diags, diagnose(page, DiagnosticSpeciesUnavailable, person.Name, ref, err))
		return out, nil
	}
	out.pilot.Species = species.Name
	return out, nil
}

func skip(page int, kind DiagnosticKind, person string, ref swapi.Reference, err error) enrichment {
	return enrichment{diags: []Diagnostic{diagnose(page, kind, person, ref, err)}}
}

func diagnose(page int, kind DiagnosticKind, person string, ref swapi.Reference, err error) Diagnostic {
	logger.Warn("Skipping unresolved person detail", "kind", kind, "page", page, "person", person, "ref", ref, "err", err)
	return Diagnostic{Kind: kind, Page: page, Person: person, Ref: ref, Message: err.Error()}
}

// isFatal separates cancellation from per-item lookup failures.
func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/holocron/pkg/report"
	"github.com/OFFIS-RIT/holocron/pkg/stats"
	"github.com/OFFIS-RIT/holocron/pkg/swapi"
	"github.com/OFFIS-RIT/holocron/pkg/swapi/swapitest"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fixture() *swapitest.Source {
	return swapitest.New().
		AddNamed("people/1", "Luke Skywalker").
		AddNamed("people/2", "C-3PO").
		AddNamed("people/3", "Han Solo").
		AddNamed("species/1", "Human").
		AddNamed("species/2", "Droid").
		AddNamed("species/3", "Wookie").
		AddNamed("species/4", "Hutt").
		AddNamed("planets/1", "Tatooine").
		AddNamed("planets/2", "Corellia").
		AddPages(swapi.ResourceFilms, []any{
			swapi.Film{
				Title:        "A New Hope",
				OpeningCrawl: strings.Repeat("a", 20),
				Characters:   []swapi.Reference{"people/1", "people/2", "people/3"},
				Species:      []swapi.Reference{"species/1", "species/2"},
			},
			swapi.Film{
				Title:        "The Empire Strikes Back",
				OpeningCrawl: strings.Repeat("b", 30),
				Characters:   []swapi.Reference{"people/1", "people/3"},
				Species:      []swapi.Reference{"species/2", "species/1", "species/3"},
			},
			swapi.Film{
				Title:        "Return of the Jedi",
				OpeningCrawl: strings.Repeat("c", 30),
				Characters:   []swapi.Reference{"people/1"},
				Species:      []swapi.Reference{"species/4", "species/3", "species/1"},
			},
		}).
		AddPages(swapi.ResourcePeople,
			[]any{
				swapi.Person{Name: "Luke Skywalker", Homeworld: "planets/1", Species: []swapi.Reference{"species/1"}, Vehicles: []swapi.Reference{"v1"}},
				swapi.Person{Name: "C-3PO", Homeworld: "planets/1", Species: []swapi.Reference{"species/2"}},
			},
			[]any{
				swapi.Person{Name: "Han Solo", Homeworld: "planets/2", Species: []swapi.Reference{"species/1"}, Vehicles: []swapi.Reference{"v2"}},
				swapi.Person{Name: "Anakin Skywalker", Homeworld: "planets/1", Species: []swapi.Reference{"species/1"}, Vehicles: []swapi.Reference{"v3"}},
			},
		)
}

func TestComputeMergesBothEngines(t *testing.T) {
	res, err := report.Compute(context.Background(), fixture(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := report.Result{
		LongestCrawl:             "The Empire Strikes Back",
		MostCharacterAppearances: "Luke Skywalker",
		TopSpecies: []stats.SpeciesAppearances{
			{Name: "Human", Appearances: 3},
			{Name: "Droid", Appearances: 2},
			{Name: "Wookie", Appearances: 2},
		},
		TopPilotProvider: &report.PilotProvider{
			Planet:         "Tatooine",
			NumberOfPilots: 2,
			Pilots: []stats.Pilot{
				{Name: "Luke Skywalker", Species: "Human"},
				{Name: "Anakin Skywalker", Species: "Human"},
			},
		},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	src := fixture()

	first, err := report.Compute(context.Background(), src, 4)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := report.Compute(context.Background(), src, 1)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Fatalf("results differ:\n%s\n%s", a, b)
	}
}

func TestAggregatorStateTransitions(t *testing.T) {
	agg := report.NewAggregator(fixture(), 2)
	if agg.State() != report.StateIdle {
		t.Fatalf("expected idle, got %s", agg.State())
	}
	if snap := agg.Snapshot(); snap.Result != nil || snap.StartedAt != nil {
		t.Fatalf("idle snapshot must be empty, got %+v", snap)
	}

	if _, err := agg.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-agg.Done()

	snap := agg.Snapshot()
	if snap.State != report.StateCompleted || snap.Result == nil || snap.Error != "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.StartedAt == nil || snap.FinishedAt == nil {
		t.Fatal("expected start and finish timestamps")
	}

	_, err := agg.Run(context.Background())
	var te *report.TransitionError
	if !errors.As(err, &te) || te.From != report.StateCompleted {
		t.Fatalf("expected transition error from completed, got %v", err)
	}
}

func TestAggregatorFailsWithoutPartialResult(t *testing.T) {
	src := fixture().FailFetch("people/1", swapi.ErrTransport)
	agg := report.NewAggregator(src, 2)

	res, err := agg.Run(context.Background())
	if !errors.Is(err, swapi.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if diff := cmp.Diff(report.Result{}, res); diff != "" {
		t.Fatalf("expected zero result, got diff:\n%s", diff)
	}

	snap := agg.Snapshot()
	if snap.State != report.StateFailed {
		t.Fatalf("expected failed, got %s", snap.State)
	}
	if snap.Result != nil {
		t.Fatal("failed snapshot must not carry a result")
	}
	if !strings.Contains(snap.Error, "most frequent character") {
		t.Fatalf("error should name the failed step, got %q", snap.Error)
	}
}

func TestComputeToleratesMistypedCrawl(t *testing.T) {
	src := swapitest.New().
		AddPages(swapi.ResourceFilms, []any{
			map[string]any{"title": "Numbers", "opening_crawl": 12345},
			map[string]any{"title": "Words", "opening_crawl": "short"},
		}).
		AddPages(swapi.ResourcePeople, []any{})

	res, err := report.Compute(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LongestCrawl != "Words" {
		t.Fatalf("got %q, want Words", res.LongestCrawl)
	}
}

func TestComputeEmptyCatalog(t *testing.T) {
	src := swapitest.New().
		AddPages(swapi.ResourceFilms, []any{}).
		AddPages(swapi.ResourcePeople, []any{})

	res, err := report.Compute(context.Background(), src, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := report.Result{TopSpecies: []stats.SpeciesAppearances{}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
	if refs := src.FetchCalls(); len(refs) != 0 {
		t.Fatalf("expected no entity resolution, got %v", refs)
	}

	out, _ := json.Marshal(res)
	if !bytes.Contains(out, []byte(`"topSpecies":[]`)) || !bytes.Contains(out, []byte(`"topPilotProvider":null`)) {
		t.Fatalf("unexpected JSON shape: %s", out)
	}
}

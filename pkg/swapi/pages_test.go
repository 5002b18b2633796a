package swapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/holocron/pkg/swapi"
	"github.com/OFFIS-RIT/holocron/pkg/swapi/swapitest"

	"github.com/google/go-cmp/cmp"
)

func TestWalkStopsOnFinalPage(t *testing.T) {
	src := swapitest.New().AddPages(swapi.ResourcePeople,
		[]any{map[string]string{"name": "a"}},
		[]any{map[string]string{"name": "b"}},
		[]any{map[string]string{"name": "c"}},
	)

	var seen []int
	err := swapi.Walk(context.Background(), src, swapi.ResourcePeople, func(page int, results []json.RawMessage) error {
		seen = append(seen, page)
		if len(results) != 1 {
			t.Fatalf("page %d: expected 1 result, got %d", page, len(results))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, src.PageCalls(swapi.ResourcePeople)); diff != "" {
		t.Fatalf("page calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, seen); diff != "" {
		t.Fatalf("callback pages mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkPropagatesCallbackError(t *testing.T) {
	src := swapitest.New().AddPages(swapi.ResourcePeople, []any{}, []any{})
	stop := errors.New("stop")

	err := swapi.Walk(context.Background(), src, swapi.ResourcePeople, func(int, []json.RawMessage) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop error, got %v", err)
	}
	if got := src.PageCalls(swapi.ResourcePeople); len(got) != 1 {
		t.Fatalf("expected a single page call, got %v", got)
	}
}

func TestFetchFilmsWrapsPageFailure(t *testing.T) {
	src := swapitest.New().FailPage(swapi.ResourceFilms, 1, swapi.ErrTransport)

	_, err := swapi.FetchFilms(context.Background(), src)
	if !errors.Is(err, swapi.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestFetchFilmsAcrossPages(t *testing.T) {
	src := swapitest.New().AddPages(swapi.ResourceFilms,
		[]any{swapi.Film{Title: "A New Hope"}},
		[]any{swapi.Film{Title: "The Empire Strikes Back"}},
	)

	films, err := swapi.FetchFilms(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var titles []string
	for _, f := range films {
		titles = append(titles, f.Title)
	}
	if diff := cmp.Diff([]string{"A New Hope", "The Empire Strikes Back"}, titles); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchFilmsSkipsNonObjectRecords(t *testing.T) {
	src := swapitest.New().AddPages(swapi.ResourceFilms,
		[]any{"not a film", swapi.Film{Title: "A New Hope"}, nil},
		[]any{map[string]any{"title": "Attack of the Clones", "opening_crawl": 12345}},
	)

	films, err := swapi.FetchFilms(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []swapi.Film{{Title: "A New Hope"}, {Title: "Attack of the Clones"}}
	if diff := cmp.Diff(want, films); diff != "" {
		t.Fatalf("films mismatch (-want +got):\n%s", diff)
	}
}

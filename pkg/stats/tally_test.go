package stats_test

import (
	"testing"

	"github.com/OFFIS-RIT/holocron/pkg/stats"

	"github.com/google/go-cmp/cmp"
)

func TestTallyMaxOnEmpty(t *testing.T) {
	tally := stats.NewTally[string]()
	if _, _, ok := tally.Max(); ok {
		t.Fatal("expected no max for an empty tally")
	}
	if got := tally.Top(3); len(got) != 0 {
		t.Fatalf("expected empty top, got %v", got)
	}
}

func TestTallyMaxPrefersFirstSeen(t *testing.T) {
	tally := stats.NewTally[string]()
	for _, k := range []string{"b", "a", "a", "b", "c"} {
		tally.Inc(k)
	}
	key, count, ok := tally.Max()
	if !ok || key != "b" || count != 2 {
		t.Fatalf("got (%q, %d, %v), want (\"b\", 2, true)", key, count, ok)
	}
}

func TestTallyTopIsStable(t *testing.T) {
	tally := stats.NewTally[string]()
	for _, k := range []string{"s4", "s1", "s2", "s1", "s3", "s2", "s1", "s2", "s3"} {
		tally.Inc(k)
	}

	tests := []struct {
		name string
		n    int
		want []stats.Count[string]
	}{
		{
			name: "top_three",
			n:    3,
			want: []stats.Count[string]{{Key: "s1", Count: 3}, {Key: "s2", Count: 3}, {Key: "s3", Count: 2}},
		},
		{
			name: "more_than_available",
			n:    10,
			want: []stats.Count[string]{{Key: "s1", Count: 3}, {Key: "s2", Count: 3}, {Key: "s3", Count: 2}, {Key: "s4", Count: 1}},
		},
		{
			name: "negative",
			n:    -1,
			want: []stats.Count[string]{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tally.Top(tc.n)); diff != "" {
				t.Fatalf("Top(%d) mismatch (-want +got):\n%s", tc.n, diff)
			}
		})
	}
}

func TestTallyEntriesKeepFirstSeenOrder(t *testing.T) {
	tally := stats.NewTally[int]()
	for _, k := range []int{3, 1, 3, 2} {
		tally.Inc(k)
	}
	want := []stats.Count[int]{{Key: 3, Count: 2}, {Key: 1, Count: 1}, {Key: 2, Count: 1}}
	if diff := cmp.Diff(want, tally.Entries()); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}
	if tally.Len() != 3 || tally.Count(3) != 2 || tally.Count(99) != 0 {
		t.Fatalf("unexpected len/count: %d %d %d", tally.Len(), tally.Count(3), tally.Count(99))
	}
}

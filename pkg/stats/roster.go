package stats

import (
	"sync"

	"github.com/OFFIS-RIT/holocron/pkg/swapi"
)

// UnknownSpecies labels a pilot whose species is not recorded or could not be resolved.
const UnknownSpecies = "unknown"

// Pilot is identified by Name within one planet's roster.
type Pilot struct {
	Name    string `json:"name"`
	Species string `json:"species"`
}

// PlanetRoster is the set of distinct pilots from one homeworld.
type PlanetRoster struct {
	Ref    swapi.Reference `json:"-"`
	Planet string          `json:"planet"`
	Pilots []Pilot         `json:"pilots"`
}

// PilotCount is the number of distinct pilots. It is derived from the roster
// itself and cannot drift from it.
func (r PlanetRoster) PilotCount() int {
	return len(r.Pilots)
}

type rosterEntry struct {
	planet string
	pilots []Pilot
	names  map[string]struct{}
}

// Rosters groups pilots by homeworld reference. Two planets sharing a display
// name stay separate. Safe for concurrent use.
type Rosters struct {
	mu     sync.Mutex
	order  []swapi.Reference
	byRef  map[swapi.Reference]*rosterEntry
	filled int
}

func NewRosters() *Rosters {
	return &Rosters{byRef: make(map[swapi.Reference]*rosterEntry)}
}

// Add records p under the planet unless a pilot with the same name is already
// there. The check and the insert happen under one lock. It reports whether p
// was added.
func (r *Rosters) Add(planetRef swapi.Reference, planetName string, p Pilot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byRef[planetRef]
	if !ok {
		entry = &rosterEntry{planet: planetName, names: make(map[string]struct{})}
		r.byRef[planetRef] = entry
		r.order = append(r.order, planetRef)
	}
	if _, dup := entry.names[p.Name]; dup {
		return false
	}
	entry.names[p.Name] = struct{}{}
	entry.pilots = append(entry.pilots, p)
	r.filled++
	return true
}

// Len returns the number of planets with at least one pilot.
func (r *Rosters) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Pilots returns the total number of distinct (planet, pilot) pairs.
func (r *Rosters) Pilots() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filled
}

// Snapshot copies every roster in the order planets were first registered.
func (r *Rosters) Snapshot() []PlanetRoster {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PlanetRoster, 0, len(r.order))
	for _, ref := range r.order {
		entry := r.byRef[ref]
		pilots := make([]Pilot, len(entry.pilots))
		copy(pilots, entry.pilots)
		out = append(out, PlanetRoster{Ref: ref, Planet: entry.planet, Pilots: pilots})
	}
	return out
}

// Top returns the roster with the most pilots. Ties go to the planet
// registered first. ok is false when no pilot was ever added.
func (r *Rosters) Top() (top PlanetRoster, ok bool) {
	for _, roster := range r.Snapshot() {
		if !ok || roster.PilotCount() > top.PilotCount() {
			top, ok = roster, true
		}
	}
	return top, ok
}

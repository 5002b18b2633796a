// Package swapi describes the remote film catalog the statistics are computed from.
//
// The catalog exposes paginated collections ("films", "people") and single
// resources addressed by reference URLs. DataSource is the contract the
// statistics engines consume; Client is the HTTP implementation.
package swapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/holocron/pkg/logger"
)

const (
	ResourceFilms  = "films"
	ResourcePeople = "people"
)

// Reference names a remote resource, usually by its absolute URL.
// Two references are equal iff their strings are equal.
type Reference string

// Page is one page of a paginated collection.
// Next is nil on the final page.
type Page struct {
	Results []json.RawMessage `json:"results"`
	Next    *string           `json:"next"`
}

// HasNext reports whether another page follows this one.
func (p Page) HasNext() bool {
	return p.Next != nil
}

// DataSource resolves references and collection pages.
//
// Implementations own retries, rate limiting and transport concerns. Every call
// either yields a value or fails with an error wrapping ErrNotFound,
// ErrTransport or ErrMalformedData.
type DataSource interface {
	Fetch(ctx context.Context, ref Reference) (json.RawMessage, error)
	FetchPage(ctx context.Context, resource string, page int) (Page, error)
}

type Film struct {
	Title        string      `json:"title"`
	OpeningCrawl string      `json:"opening_crawl"`
	Characters   []Reference `json:"characters"`
	Species      []Reference `json:"species"`
	URL          Reference   `json:"url"`
}

type Person struct {
	Name      string      `json:"name"`
	Vehicles  []Reference `json:"vehicles"`
	Homeworld Reference   `json:"homeworld"`
	Species   []Reference `json:"species"`
	URL       Reference   `json:"url"`
}

// IsPilot reports whether the person is recorded as piloting at least one vehicle.
func (p Person) IsPilot() bool {
	return len(p.Vehicles) > 0
}

// PrimarySpecies returns the first species reference, if any.
func (p Person) PrimarySpecies() (Reference, bool) {
	if len(p.Species) == 0 || p.Species[0] == "" {
		return "", false
	}
	return p.Species[0], true
}

// NamedEntity is a resolved reference with its display name.
type NamedEntity struct {
	Ref  Reference
	Name string
}

// DecodeFilm decodes a film record. Fields of the wrong type are logged and
// read as their zero value: a crawl that is not a string ranks as "", and
// reference lists drop entries that are not strings. Only a record that is not
// a JSON object fails.
func DecodeFilm(raw json.RawMessage) (Film, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Film{}, fmt.Errorf("%w: film: %v", ErrMalformedData, err)
	}
	if fields == nil {
		return Film{}, fmt.Errorf("%w: film record is null", ErrMalformedData)
	}

	var f Film
	f.URL = Reference(filmString(fields, "url", ""))
	f.Title = filmString(fields, "title", f.URL)
	f.OpeningCrawl = filmString(fields, "opening_crawl", f.URL)
	f.Characters = filmRefs(fields, "characters", f.URL)
	f.Species = filmRefs(fields, "species", f.URL)
	return f, nil
}

func filmString(fields map[string]json.RawMessage, key string, film Reference) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("Ignoring malformed film field", "film", film, "field", key, "value", string(raw))
		return ""
	}
	if v == nil {
		return ""
	}
	return *v
}

func filmRefs(fields map[string]json.RawMessage, key string, film Reference) []Reference {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("Ignoring malformed film field", "film", film, "field", key, "value", string(raw))
		return nil
	}
	if items == nil {
		return nil
	}
	refs := make([]Reference, 0, len(items))
	for _, item := range items {
		var ref string
		if err := json.Unmarshal(item, &ref); err != nil {
			logger.Warn("Ignoring malformed film reference", "film", film, "field", key, "value", string(item))
			continue
		}
		refs = append(refs, Reference(ref))
	}
	return refs
}

// DecodePerson decodes a person record. The name is required since pilots are
// identified by it.
func DecodePerson(raw json.RawMessage) (Person, error) {
	var p struct {
		Person
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Person{}, fmt.Errorf("%w: person: %v", ErrMalformedData, err)
	}
	if p.Name == nil {
		return Person{}, fmt.Errorf("%w: person %s has no name", ErrMalformedData, p.URL)
	}
	person := p.Person
	person.Name = *p.Name
	return person, nil
}

// DecodeNamed decodes any record carrying a "name" field.
func DecodeNamed(ref Reference, raw json.RawMessage) (NamedEntity, error) {
	var n struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return NamedEntity{}, fmt.Errorf("%w: %s: %v", ErrMalformedData, ref, err)
	}
	if n.Name == nil {
		return NamedEntity{}, fmt.Errorf("%w: %s has no name", ErrMalformedData, ref)
	}
	return NamedEntity{Ref: ref, Name: *n.Name}, nil
}

// Resolve fetches ref and decodes it as a named entity.
func Resolve(ctx context.Context, ds DataSource, ref Reference) (NamedEntity, error) {
	raw, err := ds.Fetch(ctx, ref)
	if err != nil {
		return NamedEntity{}, err
	}
	return DecodeNamed(ref, raw)
}

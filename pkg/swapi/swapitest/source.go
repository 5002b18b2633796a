// Package swapitest provides an in-memory swapi.DataSource that records calls.
package swapitest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/holocron/pkg/swapi"
)

type CallKind string

const (
	CallFetch CallKind = "fetch"
	CallPage  CallKind = "page"
)

// Call is one recorded DataSource invocation.
type Call struct {
	Kind     CallKind
	Ref      swapi.Reference
	Resource string
	Page     int
}

type pageKey struct {
	resource string
	page     int
}

// Source serves entities and pages registered up front. Unknown references
// fail with swapi.ErrNotFound. It is safe for concurrent use.
type Source struct {
	mu       sync.Mutex
	entities map[swapi.Reference]json.RawMessage
	pages    map[pageKey]swapi.Page
	errs     map[swapi.Reference]error
	pageErrs map[pageKey]error
	calls    []Call

	// OnFetch, when set, runs before every Fetch is answered.
	OnFetch func(ctx context.Context, ref swapi.Reference)
}

func New() *Source {
	return &Source{
		entities: make(map[swapi.Reference]json.RawMessage),
		pages:    make(map[pageKey]swapi.Page),
		errs:     make(map[swapi.Reference]error),
		pageErrs: make(map[pageKey]error),
	}
}

// AddEntity registers v, marshaled to JSON, under ref.
func (s *Source) AddEntity(ref swapi.Reference, v any) *Source {
	raw := mustMarshal(v)
	s.mu.Lock()
	s.entities[ref] = raw
	s.mu.Unlock()
	return s
}

// AddNamed registers a record with only a name.
func (s *Source) AddNamed(ref swapi.Reference, name string) *Source {
	return s.AddEntity(ref, map[string]string{"name": name, "url": string(ref)})
}

// AddPages registers the pages of resource. Every page but the last carries a
// next marker.
func (s *Source) AddPages(resource string, pages ...[]any) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, items := range pages {
		results := make([]json.RawMessage, 0, len(items))
		for _, item := range items {
			results = append(results, mustMarshal(item))
		}
		p := swapi.Page{Results: results}
		if i < len(pages)-1 {
			next := fmt.Sprintf("%s/?page=%d", resource, i+2)
			p.Next = &next
		}
		s.pages[pageKey{resource: resource, page: i + 1}] = p
	}
	return s
}

// FailFetch makes every Fetch of ref return err.
func (s *Source) FailFetch(ref swapi.Reference, err error) *Source {
	s.mu.Lock()
	s.errs[ref] = err
	s.mu.Unlock()
	return s
}

// FailPage makes FetchPage(resource, page) return err.
func (s *Source) FailPage(resource string, page int, err error) *Source {
	s.mu.Lock()
	s.pageErrs[pageKey{resource: resource, page: page}] = err
	s.mu.Unlock()
	return s
}

func (s *Source) Fetch(ctx context.Context, ref swapi.Reference) (json.RawMessage, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Kind: CallFetch, Ref: ref})
	hook := s.OnFetch
	s.mu.Unlock()

	if hook != nil {
		hook(ctx, ref)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[ref]; ok {
		return nil, err
	}
	raw, ok := s.entities[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", swapi.ErrNotFound, ref)
	}
	return raw, nil
}

func (s *Source) FetchPage(ctx context.Context, resource string, page int) (swapi.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Kind: CallPage, Resource: resource, Page: page})

	if err := ctx.Err(); err != nil {
		return swapi.Page{}, err
	}
	key := pageKey{resource: resource, page: page}
	if err, ok := s.pageErrs[key]; ok {
		return swapi.Page{}, err
	}
	p, ok := s.pages[key]
	if !ok {
		return swapi.Page{}, fmt.Errorf("%w: %s page %d", swapi.ErrNotFound, resource, page)
	}
	return p, nil
}

// Calls returns every recorded call in order.
func (s *Source) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// PageCalls returns the page numbers requested for resource, in order.
func (s *Source) PageCalls(resource string) []int {
	var pages []int
	for _, c := range s.Calls() {
		if c.Kind == CallPage && c.Resource == resource {
			pages = append(pages, c.Page)
		}
	}
	return pages
}

// FetchCalls returns the references fetched, in order.
func (s *Source) FetchCalls() []swapi.Reference {
	var refs []swapi.Reference
	for _, c := range s.Calls() {
		if c.Kind == CallFetch {
			refs = append(refs, c.Ref)
		}
	}
	return refs
}

// Reset forgets recorded calls.
func (s *Source) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func mustMarshal(v any) json.RawMessage {
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("swapitest: cannot marshal %T: %v", v, err))
	}
	return b
}

// Package jobs keeps the statistics computations started through the HTTP API.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OFFIS-RIT/holocron/pkg/logger"
	"github.com/OFFIS-RIT/holocron/pkg/report"
	"github.com/OFFIS-RIT/holocron/pkg/swapi"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrShuttingDown = errors.New("job registry is shutting down")
	ErrRegistryFull = errors.New("job registry is full")
)

type Job struct {
	ID        string
	CreatedAt time.Time
	Agg       *report.Aggregator
}

// RegistryParams configures NewRegistry.
//
// Timeout caps a single computation. Retain bounds the number of jobs held;
// the oldest finished jobs are dropped to make room, and Start fails with
// ErrRegistryFull while Retain jobs are still running.
type RegistryParams struct {
	Source   swapi.DataSource
	Parallel int
	Timeout  time.Duration
	Retain   int
}

// Registry starts computations in the background and keeps them addressable
// by id. Each job fetches everything it needs itself; jobs share nothing.
type Registry struct {
	source   swapi.DataSource
	parallel int
	timeout  time.Duration
	retain   int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string
}

func NewRegistry(params RegistryParams) *Registry {
	retain := params.Retain
	if retain <= 0 {
		retain = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		source:   params.Source,
		parallel: params.Parallel,
		timeout:  params.Timeout,
		retain:   retain,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[string]*Job),
	}
}

// Start launches a new computation. parallel overrides the registry default
// when positive.
func (r *Registry) Start(parallel int) (*Job, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("Failed to generate job id: %w", err)
	}
	if parallel <= 0 {
		parallel = r.parallel
	}

	job := &Job{
		ID:        id,
		CreatedAt: time.Now(),
		Agg:       report.NewAggregator(r.source, parallel),
	}

	r.mu.Lock()
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		return nil, ErrShuttingDown
	}
	r.evictLocked(r.retain - 1)
	if len(r.order) >= r.retain {
		r.mu.Unlock()
		return nil, ErrRegistryFull
	}
	r.jobs[id] = job
	r.order = append(r.order, id)
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		ctx := r.ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		if _, err := job.Agg.Run(ctx); err != nil {
			logger.Warn("Statistics job failed", "job", id, "err", err)
			return
		}
		logger.Info("Statistics job completed", "job", id)
	}()

	return job, nil
}

func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// Len returns the number of jobs currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Close cancels running jobs and waits for them to stop. Start fails with
// ErrShuttingDown once Close has begun.
func (r *Registry) Close() {
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
}

// evictLocked drops the oldest finished jobs until at most limit remain.
// Running jobs are never dropped.
func (r *Registry) evictLocked(limit int) {
	excess := len(r.order) - limit
	if excess <= 0 {
		return
	}
	kept := r.order[:0]
	for _, id := range r.order {
		if excess > 0 && r.jobs[id].Agg.State().IsTerminal() {
			delete(r.jobs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// Package report runs both statistics engines against a data source and
// merges their outputs into one Result, tracking the computation's state.
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OFFIS-RIT/holocron/pkg/logger"
	"github.com/OFFIS-RIT/holocron/pkg/stats"
	"github.com/OFFIS-RIT/holocron/pkg/swapi"

	"golang.org/x/sync/errgroup"
)

// Snapshot is a consistent view of an Aggregator at one point in time.
type Snapshot struct {
	State       State              `json:"state"`
	Result      *Result            `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	Diagnostics []stats.Diagnostic `json:"diagnostics,omitempty"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	FinishedAt  *time.Time         `json:"finished_at,omitempty"`
}

// Aggregator runs one computation. It starts Idle, moves to Loading when Run
// is called and ends Completed or Failed. An Aggregator cannot be rerun.
type Aggregator struct {
	source   swapi.DataSource
	parallel int

	mu          sync.RWMutex
	state       State
	result      Result
	err         error
	diagnostics []stats.Diagnostic
	startedAt   time.Time
	finishedAt  time.Time
	done        chan struct{}
}

// NewAggregator prepares a computation against source. parallel bounds the
// concurrent person enrichment per people page.
func NewAggregator(source swapi.DataSource, parallel int) *Aggregator {
	return &Aggregator{
		source:   source,
		parallel: parallel,
		state:    StateIdle,
		done:     make(chan struct{}),
	}
}

// Run computes the statistics. Film and pilot statistics are computed
// concurrently; the Result is assembled only after both succeed. Any fatal
// failure moves the aggregator to Failed and no Result is exposed.
func (a *Aggregator) Run(ctx context.Context) (Result, error) {
	if err := a.transition(StateLoading); err != nil {
		return Result{}, err
	}
	logger.Info("Computing catalog statistics")

	var (
		filmStats  stats.FilmStats
		pilotStats stats.PilotStats
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		films, err := swapi.FetchFilms(gCtx, a.source)
		if err != nil {
			return fmt.Errorf("Failed to load films: %w", err)
		}
		logger.Debug("Loaded films", "count", len(films))

		res, err := stats.NewFilmEngine(a.source).Compute(gCtx, films)
		if err != nil {
			return fmt.Errorf("Failed to compute film statistics: %w", err)
		}
		filmStats = res
		return nil
	})
	g.Go(func() error {
		res, err := stats.NewPilotEngine(a.source, a.parallel).Compute(gCtx)
		if err != nil {
			return fmt.Errorf("Failed to compute pilot statistics: %w", err)
		}
		pilotStats = res
		return nil
	})

	if err := g.Wait(); err != nil {
		a.finish(StateFailed, Result{}, err, nil)
		logger.Error("Catalog statistics failed", "err", err)
		return Result{}, err
	}

	res := Merge(filmStats, pilotStats)
	a.finish(StateCompleted, res, nil, pilotStats.Diagnostics)
	logger.Info("Catalog statistics completed",
		"longest_crawl", res.LongestCrawl,
		"diagnostics", len(pilotStats.Diagnostics),
	)
	return res.clone(), nil
}

func (a *Aggregator) transition(to State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !canTransition(a.state, to) {
		return &TransitionError{From: a.state, To: to}
	}
	a.state = to
	if to == StateLoading {
		a.startedAt = time.Now()
	}
	return nil
}

func (a *Aggregator) finish(to State, res Result, err error, diags []stats.Diagnostic) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !canTransition(a.state, to) {
		return
	}
	a.state = to
	a.result = res
	a.err = err
	a.diagnostics = diags
	a.finishedAt = time.Now()
	close(a.done)
}

func (a *Aggregator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Err returns the failure cause once the aggregator is Failed.
func (a *Aggregator) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// Done is closed when the aggregator reaches a terminal state.
func (a *Aggregator) Done() <-chan struct{} {
	return a.done
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := Snapshot{State: a.state}
	if !a.startedAt.IsZero() {
		started := a.startedAt
		s.StartedAt = &started
	}
	if !a.finishedAt.IsZero() {
		finished := a.finishedAt
		s.FinishedAt = &finished
	}
	switch a.state {
	case StateCompleted:
		res := a.result.clone()
		s.Result = &res
		s.Diagnostics = append([]stats.Diagnostic(nil), a.diagnostics...)
	case StateFailed:
		s.Error = a.err.Error()
	}
	return s
}

// Compute runs a fresh Aggregator to completion.
func Compute(ctx context.Context, source swapi.DataSource, parallel int) (Result, error) {
	return NewAggregator(source, parallel).Run(ctx)
}

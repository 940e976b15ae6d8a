package survey

import (
	"context"
	"sync"
	"time"
)

// View holds the latest pass and serves sorted snapshots of it. A failed
// refresh keeps the previous rows. View is safe for concurrent use.
type View struct {
	runner *Runner
	opts   Options
	sorter *Sorter

	refreshMu sync.Mutex // Serialises passes

	mu        sync.RWMutex
	result    *Result
	field     SortField
	dir       Direction
	lastErr   error
	updatedAt time.Time
}

// NewView returns an empty View that runs passes with opts.
func NewView(runner *Runner, opts Options) *View {
	return &View{runner: runner, opts: opts, sorter: NewSorter()}
}

// Refresh runs a new pass. On success the current sort is reapplied to the
// new data; on failure the previous data is kept and the error recorded.
// The catalog is re-fetched from the source only when the view was built
// with Options.Refresh or force is set.
func (v *View) Refresh(ctx context.Context, force bool) error {
	v.refreshMu.Lock()
	defer v.refreshMu.Unlock()

	opts := v.opts
	opts.Refresh = opts.Refresh || force
	res, err := v.runner.Execute(ctx, opts)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastErr = err
	if err != nil {
		return err
	}
	if v.field != "" {
		res = res.Sorted(v.field, v.dir)
	}
	v.result = res
	v.updatedAt = time.Now()
	return nil
}

// Sort reorders by field, toggling direction on repeated calls, and returns
// the direction used.
func (v *View) Sort(field SortField) Direction {
	dir := v.sorter.Next(field)
	v.apply(field, dir)
	return dir
}

// SortBy reorders by field in an explicit direction.
func (v *View) SortBy(field SortField, dir Direction) {
	v.sorter.Set(field, dir)
	v.apply(field, dir)
}

func (v *View) apply(field SortField, dir Direction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.field, v.dir = field, dir
	if v.result != nil {
		v.result = v.result.Sorted(field, dir)
	}
}

// Snapshot is a consistent copy of the view's state.
type Snapshot struct {
	Ready     bool          `json:"ready"` // A pass has completed
	PassID    string        `json:"pass_id,omitempty"`
	Interface string        `json:"interface,omitempty"`
	Rows      []Row         `json:"rows"`
	Summary   SummaryReport `json:"summary"`
	Versions  []string      `json:"versions"`
	SortField SortField     `json:"sort_field,omitempty"`
	SortOrder Direction     `json:"sort_order,omitempty"`
	UpdatedAt time.Time     `json:"updated_at,omitzero"`
	Error     string        `json:"error,omitempty"` // Last refresh failure
}

// Snapshot returns the current rows and summary.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{
		SortField: v.field,
		SortOrder: v.dir,
		UpdatedAt: v.updatedAt,
	}
	if v.lastErr != nil {
		s.Error = v.lastErr.Error()
	}
	if v.result == nil {
		s.Rows = []Row{}
		s.Summary = Summary{}.Report()
		return s
	}
	s.Ready = true
	s.PassID = v.result.PassID
	s.Interface = v.result.Interface
	s.Rows = v.result.Rows
	s.Summary = v.result.Summary.Report()
	s.Versions = v.result.Versions
	return s
}

// Result returns the latest pass in the current order, or nil before the
// first success. Results are never modified once published.
func (v *View) Result() *Result {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.result
}

package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leapstack-labs/dataexplorer/internal/dataset"
	"github.com/leapstack-labs/dataexplorer/internal/reactive"
	"github.com/leapstack-labs/dataexplorer/internal/visualize"
)

// Views is everything the page shows for one selection.
type Views struct {
	Selection   string
	Generation  uint64
	Choices     []string
	Filtered    *dataset.Dataset
	Figure      *visualize.Figure
	Summary     visualize.Summary
	TableHTML   string
	PlotHTML    string
	SummaryHTML string
}

// RowCount returns the number of rows in the filtered view.
func (v *Views) RowCount() int {
	return v.Filtered.Len()
}

// viewKey identifies the inputs of a derived view. The snapshot pointer
// changes on every reload, so a reload invalidates every cached view.
type viewKey struct {
	snapshot  *Snapshot
	selection string
}

// Session is the per-browser state: the current selection and the memoized
// filtered view with the outputs derived from it.
type Session struct {
	id       string
	holder   *Holder
	bindings Bindings

	mu        sync.Mutex
	selection string
	lastSeen  time.Time

	filtered *reactive.Memo[viewKey, *dataset.Dataset]
	views    *reactive.Memo[viewKey, *Views]
}

func newSession(id string, holder *Holder, bindings Bindings, now time.Time) *Session {
	s := &Session{
		id:        id,
		holder:    holder,
		bindings:  bindings,
		selection: dataset.AllValues,
		lastSeen:  now,
	}
	s.filtered = reactive.NewMemo(s.computeFiltered)
	s.views = reactive.NewMemo(s.computeViews)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Selection returns the current filter value.
func (s *Session) Selection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// Select sets the filter value. An empty value selects AllValues.
func (s *Session) Select(value string) {
	if value == "" {
		value = dataset.AllValues
	}
	s.mu.Lock()
	s.selection = value
	s.mu.Unlock()
}

// Filtered returns the filtered view for the current selection.
func (s *Session) Filtered(ctx context.Context) (*dataset.Dataset, error) {
	return s.filtered.Get(ctx, s.key())
}

// Views returns the filtered view and all derived markup for the current
// selection, recomputing only when the selection or the dataset changed.
func (s *Session) Views(ctx context.Context) (*Views, error) {
	return s.views.Get(ctx, s.key())
}

// FilterRuns reports how many times the filter has been evaluated.
func (s *Session) FilterRuns() int {
	return s.filtered.Runs()
}

// RenderRuns reports how many times the outputs have been regenerated.
func (s *Session) RenderRuns() int {
	return s.views.Runs()
}

func (s *Session) key() viewKey {
	return viewKey{snapshot: s.holder.Snapshot(), selection: s.Selection()}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) computeFiltered(_ context.Context, k viewKey) (*dataset.Dataset, error) {
	return dataset.Filter(k.snapshot.Data, s.bindings.FilterColumn, k.selection)
}

func (s *Session) computeViews(ctx context.Context, k viewKey) (*Views, error) {
	filtered, err := s.filtered.Get(ctx, k)
	if err != nil {
		return nil, err
	}

	choices, err := Choices(k.snapshot.Data, s.bindings.FilterColumn)
	if err != nil {
		return nil, err
	}
	fig, err := visualize.Scatter(filtered, s.bindings.ScatterSpec())
	if err != nil {
		return nil, err
	}
	summary, err := visualize.Summarize(filtered, s.bindings.X, s.bindings.Y)
	if err != nil {
		return nil, err
	}

	v := &Views{
		Selection:  k.selection,
		Generation: k.snapshot.Generation,
		Choices:    choices,
		Filtered:   filtered,
		Figure:     fig,
		Summary:    summary,
	}
	if v.TableHTML, err = visualize.Render(ctx, visualize.Table(filtered)); err != nil {
		return nil, fmt.Errorf("render table: %w", err)
	}
	if v.PlotHTML, err = visualize.Render(ctx, fig.Component()); err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	if v.SummaryHTML, err = visualize.Render(ctx, summary.Component()); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	return v, nil
}

package app

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"epidash/domain/cases"
	"epidash/domain/charts"
	"epidash/domain/core"
	"epidash/domain/selection"
	"epidash/internal"
	"epidash/internal/aggregate"
	"epidash/internal/errors"
	"epidash/internal/filter"
	"epidash/internal/metrics"
	"epidash/ports"
)

// DashboardService owns the selection state and recomputes every view from
// the full record store on each change. Events are handled one at a time.
type DashboardService struct {
	mu         sync.Mutex
	store      *RecordStore
	selections ports.SelectionStore
	state      selection.State
	lastSave   *ports.SaveReceipt

	logger  *internal.Logger
	metrics *metrics.Metrics
}

// FacetValues are the choices offered by the facet selectors
type FacetValues struct {
	Regions []string `json:"regions"`
	Years   []string `json:"years"`
}

// Snapshot is the result of one recomputation
type Snapshot struct {
	Filters     map[cases.Facet]string `json:"filters"`
	Fingerprint core.FilterHash        `json:"fingerprint"`
	SubsetHash  core.SubsetHash        `json:"subset_hash"`
	Records     int                    `json:"records"`
	Total       int                    `json:"total"`
	Views       charts.Views           `json:"views"`
	ComputedAt  core.Timestamp         `json:"computed_at"`
}

// NewDashboardService creates a service with an empty selection. selections
// may be nil, in which case save and restore are unavailable.
func NewDashboardService(store *RecordStore, selections ports.SelectionStore, logger *internal.Logger, m *metrics.Metrics) *DashboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DashboardService{
		store:      store,
		selections: selections,
		state:      selection.New(),
		logger:     logger.With("Dashboard"),
		metrics:    m,
	}
}

// Restore replaces the selection with the saved one. A missing or unreadable
// blob falls back to the empty selection and is never an error.
func (s *DashboardService) Restore(ctx context.Context) selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selections == nil {
		return s.state.Clone()
	}

	state, err := s.selections.Load(ctx)
	switch {
	case err == nil:
		s.state = state
		s.observeRestore("restored")
		s.logger.Info("Restored selection %v from %s", state.ActiveFilters, s.selections.Backend())
	case stderrors.Is(err, core.ErrStateNotFound):
		s.state = selection.New()
		s.observeRestore("missing")
		s.logger.Debug("No saved selection in %s", s.selections.Backend())
	default:
		s.state = selection.New()
		s.observeRestore("discarded")
		s.logger.Warn("Discarding saved selection from %s: %v", s.selections.Backend(), err)
	}
	return s.state.Clone()
}

// Save persists the current selection
func (s *DashboardService) Save(ctx context.Context) (ports.SaveReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selections == nil {
		return ports.SaveReceipt{}, errors.Unavailable("selection persistence is not configured")
	}

	receipt, err := s.selections.Save(ctx, s.state)
	if err != nil {
		s.observeSave("error")
		s.logger.Error("Failed to save selection: %v", err)
		return ports.SaveReceipt{}, errors.Wrap(err, "save selection")
	}
	s.observeSave("ok")
	s.lastSave = &receipt
	s.logger.Info("Saved selection %s to %s", receipt.Snapshot, receipt.Backend)
	return receipt, nil
}

// LastSave returns the receipt of the most recent successful save
func (s *DashboardService) LastSave() (ports.SaveReceipt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSave == nil {
		return ports.SaveReceipt{}, false
	}
	return *s.lastSave, true
}

// SetFilter sets one facet and recomputes. An empty value clears the facet.
func (s *DashboardService) SetFilter(facetName, value string) (Snapshot, error) {
	facet, err := filter.ParseFacet(facetName)
	if err != nil {
		return Snapshot{}, errors.InvalidInput("invalid facet", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Set(facet, value)
	if s.metrics != nil {
		s.metrics.FilterChanges.WithLabelValues(string(facet)).Inc()
	}
	s.logger.Debug("Filter %s=%q", facet, value)
	return s.compute(), nil
}

// ClearFilters removes every active filter and recomputes
func (s *DashboardService) ClearFilters() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Clear()
	if s.metrics != nil {
		s.metrics.FilterChanges.WithLabelValues("all").Inc()
	}
	return s.compute()
}

// ApplySelection replaces the whole selection and recomputes
func (s *DashboardService) ApplySelection(state selection.State) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state.Clone()
	return s.compute()
}

// Selection returns a copy of the current selection
func (s *DashboardService) Selection() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Facets lists the selectable values over the full dataset
func (s *DashboardService) Facets() FacetValues {
	records := s.store.Records()
	return FacetValues{
		Regions: filter.DistinctValues(records, cases.FacetRegion),
		Years:   filter.DistinctValues(records, cases.FacetYear),
	}
}

// Current recomputes every view for the current selection
func (s *DashboardService) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compute()
}

// Filtered returns the records passing the current selection
func (s *DashboardService) Filtered() []cases.Record {
	s.mu.Lock()
	filters := s.state.Filters()
	s.mu.Unlock()
	return filter.Apply(s.store.Records(), filter.Filters(filters))
}

// View computes a single projection for the current selection
func (s *DashboardService) View(name string) (any, error) {
	viewName, err := charts.ParseViewName(name)
	if err != nil {
		return nil, errors.InvalidInput("invalid view", err)
	}

	started := time.Now()
	out, err := aggregate.View(s.Filtered(), viewName)
	if err != nil {
		return nil, errors.InvalidInput("invalid view", err)
	}
	s.metrics.ObserveView(string(viewName), started)
	return out, nil
}

// Country returns the map entry for one country under the current selection
func (s *DashboardService) Country(name string) (charts.CountryEntry, error) {
	entry, ok := aggregate.Choropleth(s.Filtered()).Lookup(name)
	if !ok {
		return charts.CountryEntry{}, errors.NotFound("country " + name)
	}
	return entry, nil
}

// compute runs filter and aggregation from the full store; callers hold mu
func (s *DashboardService) compute() Snapshot {
	started := time.Now()
	all := s.store.Records()
	filters := s.state.Filters()
	subset := filter.Apply(all, filter.Filters(filters))

	snap := Snapshot{
		Filters:     filters,
		Fingerprint: s.state.Fingerprint(),
		SubsetHash:  SubsetHash(subset),
		Records:     len(subset),
		Total:       len(all),
		Views:       aggregate.Views(subset),
		ComputedAt:  core.Now(),
	}

	if s.metrics != nil {
		s.metrics.FilteredRecordSet.Set(float64(len(subset)))
		s.metrics.ObserveView("all", started)
	}
	return snap
}

// SubsetHash fingerprints a filtered record sequence, order included
func SubsetHash(records []cases.Record) core.SubsetHash {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Region + "|" + r.Key()
	}
	return core.ComputeSubsetHash(keys)
}

func (s *DashboardService) observeSave(outcome string) {
	if s.metrics != nil {
		s.metrics.StateSaves.WithLabelValues(outcome).Inc()
	}
}

func (s *DashboardService) observeRestore(outcome string) {
	if s.metrics != nil {
		s.metrics.StateRestores.WithLabelValues(outcome).Inc()
	}
}

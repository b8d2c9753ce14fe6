package selection

import (
	"encoding/json"
	"fmt"
	"strings"

	"epidash/domain/cases"
	"epidash/domain/core"
)

// State is the process-wide dashboard selection. It is owned by the
// dashboard controller and only mutated in response to selection events.
type State struct {
	ActiveFilters map[cases.Facet]string `json:"activeFilters"`
	SavedSettings map[string]any         `json:"savedSettings"`
}

// New returns an empty selection
func New() State {
	return State{
		ActiveFilters: make(map[cases.Facet]string),
		SavedSettings: make(map[string]any),
	}
}

// Set assigns a facet value; an empty value clears the facet
func (s *State) Set(facet cases.Facet, value string) {
	if s.ActiveFilters == nil {
		s.ActiveFilters = make(map[cases.Facet]string)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(s.ActiveFilters, facet)
		return
	}
	s.ActiveFilters[facet] = value
}

// Get returns the active value for a facet, or "" when unfiltered
func (s State) Get(facet cases.Facet) string {
	return s.ActiveFilters[facet]
}

// Clear removes every active filter. Saved settings are kept.
func (s *State) Clear() {
	s.ActiveFilters = make(map[cases.Facet]string)
}

// Filters returns a copy of the active filters for the filter engine
func (s State) Filters() map[cases.Facet]string {
	out := make(map[cases.Facet]string, len(s.ActiveFilters))
	for k, v := range s.ActiveFilters {
		out[k] = v
	}
	return out
}

// Fingerprint hashes the active filters independent of map order
func (s State) Fingerprint() core.FilterHash {
	flat := make(map[string]string, len(s.ActiveFilters))
	for k, v := range s.ActiveFilters {
		flat[string(k)] = v
	}
	return core.ComputeFilterHash(flat)
}

// Clone returns a deep copy. Saved settings are copied through JSON since
// they are opaque pass-through values.
func (s State) Clone() State {
	out := New()
	for k, v := range s.ActiveFilters {
		out.ActiveFilters[k] = v
	}
	if len(s.SavedSettings) == 0 {
		return out
	}
	raw, err := json.Marshal(s.SavedSettings)
	if err != nil {
		for k, v := range s.SavedSettings {
			out.SavedSettings[k] = v
		}
		return out
	}
	_ = json.Unmarshal(raw, &out.SavedSettings)
	return out
}

// Marshal serializes the state into the persisted blob format
func Marshal(s State) ([]byte, error) {
	if s.ActiveFilters == nil {
		s.ActiveFilters = map[cases.Facet]string{}
	}
	if s.SavedSettings == nil {
		s.SavedSettings = map[string]any{}
	}
	return json.Marshal(s)
}

// Unmarshal parses a persisted blob. Unknown facets are dropped; a blob that
// is not a JSON object is reported as corrupt.
func Unmarshal(data []byte) (State, error) {
	var raw struct {
		ActiveFilters map[string]any `json:"activeFilters"`
		SavedSettings map[string]any `json:"savedSettings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return New(), fmt.Errorf("%w: %v", core.ErrCorruptState, err)
	}

	state := New()
	for k, v := range raw.ActiveFilters {
		facet := cases.Facet(k)
		if !facet.Valid() {
			continue
		}
		switch val := v.(type) {
		case string:
			state.Set(facet, val)
		case float64:
			// years persisted as numbers by older clients
			state.Set(facet, fmt.Sprintf("%v", val))
		}
	}
	for k, v := range raw.SavedSettings {
		state.SavedSettings[k] = v
	}
	return state, nil
}

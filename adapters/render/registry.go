package render

import (
	"sort"
	"strings"

	"epidash/domain/core"
	"epidash/ports"
)

// Registry looks renderers up by name
type Registry struct {
	renderers map[string]ports.Renderer
}

// NewRegistry indexes the given renderers by Name
func NewRegistry(renderers ...ports.Renderer) *Registry {
	reg := &Registry{renderers: make(map[string]ports.Renderer, len(renderers))}
	for _, r := range renderers {
		reg.renderers[r.Name()] = r
	}
	return reg
}

// Default returns the timeline, map and report renderers
func Default() *Registry {
	return NewRegistry(NewTimelineSVG(), NewMapGeoJSON(), NewReport())
}

// Get returns the named renderer
func (r *Registry) Get(name string) (ports.Renderer, error) {
	renderer, ok := r.renderers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, core.NewNotFoundError("renderer", name)
	}
	return renderer, nil
}

// Names lists registered renderers alphabetically
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

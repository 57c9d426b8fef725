package analysis

import (
	"errors"
	"fmt"
	"slices"
)

var errNoObservation = errors.New("no observation")

// Registry is an ordered, typed set of tools.
type Registry struct {
	tools []Tool
	byID  map[ID]Tool
}

// NewRegistry registers tools in order. A later tool with a duplicate ID
// replaces the earlier one in place.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byID: make(map[ID]Tool, len(tools))}
	for _, t := range tools {
		id := t.Metadata().ID
		if _, ok := r.byID[id]; ok {
			for i, old := range r.tools {
				if old.Metadata().ID == id {
					r.tools[i] = t
				}
			}
		} else {
			r.tools = append(r.tools, t)
		}
		r.byID[id] = t
	}
	return r
}

// DefaultRegistry holds the seven statistical tools followed by the five
// spectral and decomposition tools.
func DefaultRegistry() *Registry {
	return NewRegistry(
		TrendTool{},
		VolatilityTool{},
		NewAnomalyTool(),
		StationarityTool{},
		DistributionTool{},
		ChangepointTool{},
		CorrelationTool{},
		SpectrumTool{TopK: 5},
		MultiscaleTool{MaxLevel: 4},
		PeriodogramTool{},
		SeasonalTool{},
		DifferencingTool{Order: 1},
	)
}

// Lookup returns the tool registered under id.
func (r *Registry) Lookup(id ID) (Tool, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	return slices.Clone(r.tools)
}

// Metadata lists every tool's metadata in registration order.
func (r *Registry) Metadata() []Metadata {
	out := make([]Metadata, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Metadata())
	}
	return out
}

// Match returns the metadata of tools whose triggers contain keyword.
func (r *Registry) Match(keyword string) []Metadata {
	var out []Metadata
	for _, t := range r.tools {
		md := t.Metadata()
		if slices.Contains(md.Triggers, keyword) {
			out = append(out, md)
		}
	}
	return out
}

// Run executes one tool. Errors and panics are reported in the Outcome,
// never propagated.
func (r *Registry) Run(id ID, values []float64) Outcome {
	t, ok := r.byID[id]
	if !ok {
		return Outcome{Tool: id, Err: &ToolError{Tool: id, Err: ErrUnknownTool}}
	}
	return run(t, id, values)
}

func run(t Tool, id ID, values []float64) (out Outcome) {
	out.Tool = id
	defer func() {
		if p := recover(); p != nil {
			out.Observation = nil
			out.Err = &ToolError{Tool: id, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	obs, err := t.Run(values)
	switch {
	case err != nil:
		out.Err = &ToolError{Tool: id, Err: err}
	case obs == nil:
		out.Err = &ToolError{Tool: id, Err: errNoObservation}
	default:
		out.Observation = obs
	}
	return out
}

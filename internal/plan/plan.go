package plan

import (
	"errors"
	"fmt"

	"github.com/danmuck/rigctl/internal/probe"
	"github.com/danmuck/rigctl/internal/toolset"
)

var (
	ErrDependencyCycle   = errors.New("dependency cycle")
	ErrUnknownDependency = errors.New("unknown dependency")
)

// Prober is the presence check the plan builder runs once per tool.
type Prober interface {
	Probe(spec toolset.Spec) probe.Result
}

// Entry pairs a catalog spec with its probed state.
type Entry struct {
	Spec    toolset.Spec
	Status  probe.Status
	Version string
	Path    string
}

// Plan is the immutable installation plan for one run: every catalog entry
// with its probed status, held in catalog order.
type Plan struct {
	entries []Entry
	index   map[string]int
}

// Build probes every registered spec once, in catalog order, and derives the
// plan. The install walk is validated here so a dependency cycle or unknown
// edge fails the run before any install action.
func Build(p Prober, reg *toolset.Registry) (*Plan, error) {
	specs := reg.List()
	entries := make([]Entry, 0, len(specs))
	index := make(map[string]int, len(specs))
	for _, spec := range specs {
		result := p.Probe(spec)
		index[spec.ID] = len(entries)
		entries = append(entries, Entry{
			Spec:    spec,
			Status:  result.Status,
			Version: result.Version,
			Path:    result.Path,
		})
	}

	built := &Plan{entries: entries, index: index}
	if _, err := built.OrderedMissing(); err != nil {
		return nil, err
	}
	return built, nil
}

// Entries returns the plan rows in catalog order.
func (p *Plan) Entries() []Entry {
	list := make([]Entry, len(p.entries))
	copy(list, p.entries)
	return list
}

// Lookup returns the entry for a tool id.
func (p *Plan) Lookup(id string) (Entry, bool) {
	idx, ok := p.index[id]
	if !ok {
		return Entry{}, false
	}
	return p.entries[idx], true
}

// AllPresent reports whether nothing is missing, the fast-path condition.
func (p *Plan) AllPresent() bool {
	for _, entry := range p.entries {
		if entry.Status != probe.StatusPresent {
			return false
		}
	}
	return true
}

// Missing returns the absent entries in catalog order.
func (p *Plan) Missing() []Entry {
	missing := make([]Entry, 0)
	for _, entry := range p.entries {
		if entry.Status != probe.StatusPresent {
			missing = append(missing, entry)
		}
	}
	return missing
}

// OrderedMissing returns the absent entries ordered so every missing
// dependency precedes its dependents. Present dependencies are already
// satisfied and take no slot; ties follow catalog order.
func (p *Plan) OrderedMissing() ([]Entry, error) {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[string]int, len(p.entries))
	ordered := make([]Entry, 0)

	var visit func(id string) error
	visit = func(id string) error {
		idx, ok := p.index[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDependency, id)
		}
		entry := p.entries[idx]
		if entry.Status == probe.StatusPresent {
			return nil
		}

		switch state[id] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrDependencyCycle, id)
		}

		state[id] = visiting
		for _, dep := range entry.Spec.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = visited
		ordered = append(ordered, entry)
		return nil
	}

	for _, entry := range p.entries {
		if entry.Status == probe.StatusPresent {
			continue
		}
		if err := visit(entry.Spec.ID); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

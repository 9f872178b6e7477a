package toolset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSpecExists  = errors.New("tool spec already registered")
	ErrInvalidSpec = errors.New("invalid tool spec")
	ErrUnknownTool = errors.New("unknown tool")
)

// Registry stores tool specs by stable identifier. Registration order is
// preserved so probe walks and topological tie-breaks stay deterministic.
type Registry struct {
	order []string
	items map[string]Spec
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Spec)}
}

// Validate checks required fields, id format, and recipe step shape.
func Validate(spec Spec) error {
	id := strings.TrimSpace(spec.ID)
	name := strings.TrimSpace(spec.Name)
	desc := strings.TrimSpace(spec.Description)
	if id == "" || name == "" || desc == "" {
		return fmt.Errorf("%w: id, name, and description are required", ErrInvalidSpec)
	}
	if !isValidID(id) {
		return fmt.Errorf("%w: invalid id format %q", ErrInvalidSpec, id)
	}
	if len(spec.Probe) == 0 {
		return fmt.Errorf("%w: %s has no probe command", ErrInvalidSpec, id)
	}
	for i, step := range spec.Recipe {
		switch step.Kind {
		case StepRun:
			if len(step.Argv) == 0 {
				return fmt.Errorf("%w: %s step %d has empty argv", ErrInvalidSpec, id, i)
			}
		case StepWriteFile:
			if step.Path == "" || step.Content == "" {
				return fmt.Errorf("%w: %s step %d needs path and content", ErrInvalidSpec, id, i)
			}
		default:
			return fmt.Errorf("%w: %s step %d has unknown kind %q", ErrInvalidSpec, id, i, step.Kind)
		}
	}
	return nil
}

// Register adds a spec to the registry. Dependency edges may point at specs
// registered later; ValidateDependencies checks them once the set is complete.
func (r *Registry) Register(spec Spec) error {
	if err := Validate(spec); err != nil {
		return err
	}

	if _, ok := r.items[spec.ID]; ok {
		return fmt.Errorf("%w: %s", ErrSpecExists, spec.ID)
	}
	r.items[spec.ID] = spec
	r.order = append(r.order, spec.ID)
	return nil
}

// Resolve returns a spec by id.
func (r *Registry) Resolve(id string) (Spec, bool) {
	spec, ok := r.items[id]
	return spec, ok
}

// List returns all specs in registration order.
func (r *Registry) List() []Spec {
	list := make([]Spec, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.items[id])
	}
	return list
}

// Len returns the number of registered specs.
func (r *Registry) Len() int {
	return len(r.order)
}

// ValidateDependencies checks that every dependency edge names a registered
// spec and that no spec depends on itself.
func (r *Registry) ValidateDependencies() error {
	for _, id := range r.order {
		for _, dep := range r.items[id].DependsOn {
			if dep == id {
				return fmt.Errorf("%w: %s depends on itself", ErrInvalidSpec, id)
			}
			if _, ok := r.items[dep]; !ok {
				return fmt.Errorf("%w: %s depends on %s", ErrUnknownTool, id, dep)
			}
		}
	}
	return nil
}

// Without returns a copy of the registry with the named specs removed. Only
// optional specs may be skipped, and a skip that would strand a remaining
// spec's dependency is rejected.
func (r *Registry) Without(skip []string) (*Registry, error) {
	if len(skip) == 0 {
		return r, nil
	}

	drop := make(map[string]bool, len(skip))
	for _, id := range skip {
		spec, ok := r.items[id]
		if !ok {
			return nil, fmt.Errorf("%w: cannot skip %s", ErrUnknownTool, id)
		}
		if !spec.Optional {
			return nil, fmt.Errorf("%w: %s is required and cannot be skipped", ErrInvalidSpec, id)
		}
		drop[id] = true
	}

	trimmed := NewRegistry()
	for _, id := range r.order {
		if drop[id] {
			continue
		}
		if err := trimmed.Register(r.items[id]); err != nil {
			return nil, err
		}
	}
	if err := trimmed.ValidateDependencies(); err != nil {
		return nil, fmt.Errorf("skip list breaks dependency order: %w", err)
	}
	return trimmed, nil
}

func isValidID(id string) bool {
	if id == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(id)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}

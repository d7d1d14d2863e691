package prioritization

import (
	"fmt"
	"sort"

	"github.com/example/covkit/coverage/domain"
)

// Algorithm names.
const (
	GeneralIgnoreName           = "general-ignore"
	AdditionalGeneralIgnoreName = "additional-general-ignore"
	AdditionalWithResetsName    = "additional-with-resets"
	DuplationName               = "duplation"
	PartitionMetricName         = "partition-metric"
	PartitionWithResetsName     = "partition-with-resets"
	RaptorName                  = "raptor"
	FlintName                   = "flint"
)

// Factory builds a fresh, uninitialized prioritizer.
type Factory func() Prioritizer

// Registry resolves algorithm names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding every built-in prioritizer.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(GeneralIgnoreName, func() Prioritizer { return NewGeneralIgnore() })
	r.Register(AdditionalGeneralIgnoreName, func() Prioritizer { return NewAdditionalGeneralIgnore() })
	r.Register(AdditionalWithResetsName, func() Prioritizer { return NewAdditionalWithResets() })
	r.Register(DuplationName, func() Prioritizer { return NewDuplation() })
	r.Register(PartitionMetricName, func() Prioritizer { return NewPartitionMetric() })
	r.Register(PartitionWithResetsName, func() Prioritizer { return NewPartitionWithResets() })
	r.Register(RaptorName, func() Prioritizer { return NewRaptor() })
	r.Register(FlintName, func() Prioritizer { return NewFlint() })
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Lookup returns a new prioritizer for name.
func (r *Registry) Lookup(name string) (Prioritizer, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: prioritization %q", domain.ErrUnknownAlgorithm, name)
	}
	return f(), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package clustering splits the test cases (and sometimes the code elements) of
// a coverage matrix into named clusters.
package clustering

import (
	"fmt"
	"sort"

	"github.com/example/covkit/coverage/domain"
)

// Algorithm is a clustering strategy. Init is called once with the
// algorithm's parameters; Execute adds its clusters to the given map.
type Algorithm interface {
	Name() string
	Init(params domain.Params) error
	Execute(data *domain.SelectionData, clusters domain.ClusterMap) error
}

// Factory builds a fresh, uninitialized algorithm.
type Factory func() Algorithm

// Registry resolves algorithm names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding every built-in algorithm.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(OneClusterName, func() Algorithm { return &OneCluster{} })
	r.Register(CoverageName, func() Algorithm { return &CoverageBased{} })
	r.Register(DuplationName, func() Algorithm { return &Duplation{} })
	for _, m := range []Measure{Hamming, Ochiai, Dice, Jaccard} {
		m := m
		r.Register(m.String(), func() Algorithm { return NewDistance(m) })
	}
	r.Register(LabelsName, func() Algorithm { return &Labels{} })
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Lookup returns a new algorithm instance for name.
func (r *Registry) Lookup(name string) (Algorithm, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: clustering %q", domain.ErrUnknownAlgorithm, name)
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

// Run looks up, initializes and executes one algorithm.
func (r *Registry) Run(name string, params domain.Params, data *domain.SelectionData) (domain.ClusterMap, error) {
	alg, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := alg.Init(params); err != nil {
		return nil, fmt.Errorf("init %s: %w", name, err)
	}
	clusters := make(domain.ClusterMap)
	err = alg.Execute(data, clusters)
	return clusters, err
}

func allCodeElements(cov *domain.Coverage) []int {
	ids := make([]int, cov.CodeElementCount())
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func allTestCases(cov *domain.Coverage) []int {
	ids := make([]int, cov.TestCount())
	for i := range ids {
		ids[i] = i
	}
	return ids
}

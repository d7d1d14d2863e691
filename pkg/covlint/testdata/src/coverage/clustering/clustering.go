// Package clustering is a stub for testing the covkit linter.
package clustering

type Algorithm interface{}

type Registry struct{}

func (*Registry) Register(name string, f func() Algorithm) {}

func (*Registry) Lookup(name string) (Algorithm, error) { return nil, nil }

func (*Registry) Run(name string, params map[string]any, data any) (map[string]any, error) {
	return nil, nil
}

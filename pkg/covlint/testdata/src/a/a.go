// Package a is a test package for the covkit linter.
package a

import (
	"coverage/clustering"
	"coverage/localization"
	"coverage/prioritization"
)

const noName = ""

// Test cases

func emptyClustering(r *clustering.Registry) {
	r.Lookup("")            // want "Registry.Lookup called with an empty algorithm name"
	r.Run(``, nil, nil)     // want "Registry.Run called with an empty algorithm name"
	r.Register(noName, nil) // want "Registry.Register called with an empty algorithm name"
}

func emptyPrioritization(r *prioritization.Registry) {
	r.Lookup("") // want "Registry.Lookup called with an empty algorithm name"
}

func emptyTechnique() {
	localization.Lookup("", nil) // want "localization.Lookup called with an empty algorithm name"
}

func droppedNext(p prioritization.Prioritizer, e *prioritization.Engine) {
	p.Next()          // want "result of Next discarded"
	id, _ := e.Next() // want "error from Next discarded"
	_ = id
}

// Valid cases - should NOT produce warnings

type other struct{}

func (other) Lookup(name string) {}
func (other) Next() (int, error) { return 0, nil }

func valid(r *clustering.Registry, p prioritization.Prioritizer, name string) error {
	r.Lookup("coverage")
	r.Lookup(name)
	localization.Lookup("ochiai", nil)
	other{}.Lookup("")
	other{}.Next()

	for {
		id, err := p.Next()
		if err != nil {
			return err
		}
		_ = id
	}
}

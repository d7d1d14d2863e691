package prioritization

import "github.com/example/covkit/coverage/bisect"

// NewDuplation orders tests by bisection rounds: every round picks, per class
// of indistinguishable code elements, the test that best halves it.
func NewDuplation() *Engine {
	return newEngine(DuplationName, &duplation{}, Ascending)
}

type duplation struct {
	seq *bisect.Sequencer
}

func (d *duplation) start(e *env) error {
	d.seq = bisect.NewSequencer(e.cov, e.tests, e.elements)
	if e.tieBreak == Descending {
		d.seq.Descending()
	}
	return nil
}

func (d *duplation) choose(e *env) int {
	if tid, ok := d.seq.Next(); ok {
		return tid
	}
	return e.candidates()[0]
}

func (d *duplation) commit(*env, int) {}

// adopt splits the classes by the whole prefix at once.
func (d *duplation) adopt(_ *env, prefix []int) {
	d.seq.Adopt(prefix)
}

package prioritization

// NewGeneralIgnore orders tests by their total coverage, computed once.
// Ties go to the highest id unless tieBreak says otherwise.
func NewGeneralIgnore() *Engine {
	return newEngine(GeneralIgnoreName, &generalIgnore{}, Descending)
}

// NewAdditionalGeneralIgnore is greedy additional coverage: each pick covers
// the most elements not covered by earlier picks.
func NewAdditionalGeneralIgnore() *Engine {
	return newEngine(AdditionalGeneralIgnoreName, &additional{}, Ascending)
}

// NewAdditionalWithResets is greedy additional coverage that starts over with
// an empty covered set once no remaining test adds coverage.
func NewAdditionalWithResets() *Engine {
	return newEngine(AdditionalWithResetsName, &additional{resets: true}, Ascending)
}

type generalIgnore struct{}

func (generalIgnore) start(*env) error { return nil }

func (generalIgnore) choose(e *env) int {
	tid, _ := e.best(func(tid int) float64 { return float64(len(e.covered[tid])) })
	return tid
}

func (generalIgnore) commit(*env, int) {}

type additional struct {
	resets bool

	priority map[int]int
	covered  map[int]bool
}

func (a *additional) start(e *env) error {
	a.priority = make(map[int]int, len(e.tests))
	a.reset(e)
	return nil
}

// reset forgets the covered set and restores every remaining test's full coverage.
func (a *additional) reset(e *env) {
	a.covered = make(map[int]bool)
	for tid := range e.remaining {
		a.priority[tid] = len(e.covered[tid])
	}
}

func (a *additional) choose(e *env) int {
	score := func(tid int) float64 { return float64(a.priority[tid]) }
	tid, best := e.best(score)
	if best == 0 && a.resets {
		a.reset(e)
		tid, _ = e.best(score)
	}
	return tid
}

func (a *additional) commit(e *env, tid int) {
	delete(a.priority, tid)
	for _, cid := range e.covered[tid] {
		if a.covered[cid] {
			continue
		}
		a.covered[cid] = true
		for _, other := range e.coveredBy[cid] {
			if e.remaining[other] {
				a.priority[other]--
			}
		}
	}
}

// Package bisect orders test cases by how well they split the code element
// space. Each round picks, for every class of still indistinguishable code
// elements, the test whose coverage comes closest to halving that class. After
// the round every class is split by the picked tests, so resolution roughly
// doubles per round.
package bisect

import (
	"sort"

	"github.com/example/covkit/coverage/domain"
)

// Classifier is a classification of code elements into classes.
type Classifier struct {
	cov     *domain.Coverage
	members [][]int
}

// NewClassifier puts every element into a single class. Duplicate ids are dropped.
func NewClassifier(cov *domain.Coverage, elements []int) *Classifier {
	seen := make(map[int]bool, len(elements))
	all := make([]int, 0, len(elements))
	for _, cid := range elements {
		if !seen[cid] {
			seen[cid] = true
			all = append(all, cid)
		}
	}
	c := &Classifier{cov: cov}
	if len(all) > 0 {
		c.members = [][]int{all}
	}
	return c
}

// Classes returns the number of classes.
func (c *Classifier) Classes() int { return len(c.members) }

// Members returns the elements of class id.
func (c *Classifier) Members(id int) []int { return c.members[id] }

// Elements returns the total number of classified elements.
func (c *Classifier) Elements() int {
	n := 0
	for _, m := range c.members {
		n += len(m)
	}
	return n
}

// coveredIn counts the members of class id that test covers.
func (c *Classifier) coveredIn(test, id int) int {
	n := 0
	for _, cid := range c.members[id] {
		if c.cov.Covers(test, cid) {
			n++
		}
	}
	return n
}

// BestSplitter returns the candidate whose coverage of class id is closest to
// half of it. Candidates that cover none or all of the class do not split it
// and are ignored. Ties go to the earliest candidate.
func (c *Classifier) BestSplitter(id int, candidates []int, skip func(int) bool) (int, bool) {
	size := len(c.members[id])
	best, bestDist := 0, -1
	for _, tid := range candidates {
		if skip != nil && skip(tid) {
			continue
		}
		in := c.coveredIn(tid, id)
		if in == 0 || in == size {
			continue
		}
		dist := size - 2*in
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = tid, dist
		}
	}
	return best, bestDist >= 0
}

// Refine splits every class by each test in turn. Class ids are renumbered
// densely; the covered half of a class precedes the uncovered half.
func (c *Classifier) Refine(tests ...int) {
	for _, tid := range tests {
		next := make([][]int, 0, 2*len(c.members))
		for _, members := range c.members {
			var in, out []int
			for _, cid := range members {
				if c.cov.Covers(tid, cid) {
					in = append(in, cid)
				} else {
					out = append(out, cid)
				}
			}
			if len(in) > 0 {
				next = append(next, in)
			}
			if len(out) > 0 {
				next = append(next, out)
			}
		}
		c.members = next
	}
}

// Round picks at most one splitter per class of two or more elements. The
// classes are not refined; callers do that once the round is consumed.
func (c *Classifier) Round(candidates []int, selected map[int]bool) []int {
	picked := make(map[int]bool)
	skip := func(tid int) bool { return selected[tid] || picked[tid] }

	var picks []int
	for id := range c.members {
		if len(c.members[id]) < 2 {
			continue
		}
		tid, ok := c.BestSplitter(id, candidates, skip)
		if !ok {
			continue
		}
		picked[tid] = true
		picks = append(picks, tid)
	}
	return picks
}

// Sequencer produces a complete test ordering, one bisection round at a time.
// Once no remaining test can split any class, the rest follow by descending
// coverage of the classified elements, ties in candidate order.
type Sequencer struct {
	cls         *Classifier
	elements    []int
	candidates  []int
	isCandidate map[int]bool
	selected    map[int]bool
	queue       []int
	saturated   bool
}

// NewSequencer orders tests over elements. Candidates are considered in
// ascending id order unless Descending is called before the first Next.
func NewSequencer(cov *domain.Coverage, tests, elements []int) *Sequencer {
	candidates := uniqueSorted(tests)
	isCandidate := make(map[int]bool, len(candidates))
	for _, tid := range candidates {
		isCandidate[tid] = true
	}
	return &Sequencer{
		cls:         NewClassifier(cov, elements),
		elements:    elements,
		candidates:  candidates,
		isCandidate: isCandidate,
		selected:    make(map[int]bool, len(candidates)),
	}
}

// Descending makes ties go to the highest test id instead of the lowest.
func (s *Sequencer) Descending() *Sequencer {
	sort.Sort(sort.Reverse(sort.IntSlice(s.candidates)))
	return s
}

// Classifier exposes the current classification.
func (s *Sequencer) Classifier() *Classifier { return s.cls }

// Remaining returns the number of tests not yet produced or queued.
func (s *Sequencer) Remaining() int {
	return len(s.candidates) - len(s.selected) + len(s.queue)
}

// Next returns the next test, or false once every candidate was produced.
func (s *Sequencer) Next() (int, bool) {
	if len(s.queue) == 0 {
		s.fill()
	}
	if len(s.queue) == 0 {
		return 0, false
	}
	tid := s.queue[0]
	s.queue = s.queue[1:]
	return tid, true
}

// Adopt treats prefix as one already consumed round: the tests are marked as
// selected and the classes are split by them. Pending picks are discarded.
func (s *Sequencer) Adopt(prefix []int) {
	for _, tid := range s.queue {
		delete(s.selected, tid)
	}
	s.queue = nil
	var fresh []int
	for _, tid := range prefix {
		if s.isCandidate[tid] && !s.selected[tid] {
			s.selected[tid] = true
			fresh = append(fresh, tid)
		}
	}
	s.cls.Refine(fresh...)
	s.saturated = false
}

func (s *Sequencer) fill() {
	if len(s.selected) >= len(s.candidates) {
		return
	}
	if !s.saturated {
		picks := s.cls.Round(s.candidates, s.selected)
		if len(picks) > 0 {
			for _, tid := range picks {
				s.selected[tid] = true
			}
			s.cls.Refine(picks...)
			s.queue = picks
			return
		}
		s.saturated = true
	}

	var rest []int
	for _, tid := range s.candidates {
		if !s.selected[tid] {
			rest = append(rest, tid)
		}
	}
	weight := make(map[int]int, len(rest))
	for _, tid := range rest {
		for _, cid := range s.elements {
			if s.cls.cov.Covers(tid, cid) {
				weight[tid]++
			}
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return weight[rest[i]] > weight[rest[j]]
	})
	for _, tid := range rest {
		s.selected[tid] = true
	}
	s.queue = rest
}

// Order drains a fresh Sequencer.
func Order(cov *domain.Coverage, tests, elements []int) []int {
	s := NewSequencer(cov, tests, elements)
	out := make([]int, 0, len(tests))
	for {
		tid, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, tid)
	}
}

func uniqueSorted(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

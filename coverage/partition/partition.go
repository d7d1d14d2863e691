// Package partition groups code elements into equivalence classes of identical
// coverage vectors within a cluster.
package partition

import (
	"sort"

	"github.com/example/covkit/coverage/domain"
)

// Result is the outcome of a partition computation.
//
// Info maps every code element of the cluster to its partition id and Data maps
// each partition id to its members. Partition ids are dense, starting at 0.
type Result struct {
	Info map[int]int
	Data map[int][]int
}

// Len returns the number of partitions.
func (r *Result) Len() int { return len(r.Data) }

// Elements returns the number of partitioned code elements.
func (r *Result) Elements() int { return len(r.Info) }

// Sizes returns the size of every partition, indexed by partition id.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Data))
	for id, members := range r.Data {
		sizes[id] = len(members)
	}
	return sizes
}

// Same reports whether code elements a and b share a partition.
func (r *Result) Same(a, b int) bool {
	pa, ok := r.Info[a]
	if !ok {
		return false
	}
	pb, ok := r.Info[b]
	return ok && pa == pb
}

type candidate struct {
	element  int
	order    int
	covered  int
	indexSum int
}

// Compute partitions the code elements of cluster over the coverage of data.
func Compute(data *domain.SelectionData, cluster *domain.ClusterDefinition) *Result {
	return ComputeCoverage(data.Coverage(), cluster)
}

// ComputeCoverage partitions the code elements of cluster over cov.
//
// Elements are first grouped by indexSum, the sum of (position+1) over the
// covering tests. Within a group, elements are merged only when their coverage
// vectors are equal; colliding elements with different vectors go back into
// the group and seed a partition of their own.
func ComputeCoverage(cov *domain.Coverage, cluster *domain.ClusterDefinition) *Result {
	seen := make(map[int]bool, len(cluster.CodeElements))
	cands := make([]candidate, 0, len(cluster.CodeElements))
	for order, cid := range cluster.CodeElements {
		if seen[cid] {
			continue
		}
		seen[cid] = true
		c := candidate{element: cid, order: order}
		for pos, tid := range cluster.TestCases {
			if cov.Covers(tid, cid) {
				c.covered++
				c.indexSum += pos + 1
			}
		}
		cands = append(cands, c)
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].indexSum > cands[j].indexSum
	})

	res := &Result{
		Info: make(map[int]int, len(cands)),
		Data: make(map[int][]int),
	}
	next := 0
	for start := 0; start < len(cands); {
		end := start + 1
		for end < len(cands) && cands[end].indexSum == cands[start].indexSum {
			end++
		}
		pool := cands[start:end]
		for len(pool) > 0 {
			rep := pool[0]
			id := next
			next++
			res.Info[rep.element] = id
			res.Data[id] = []int{rep.element}

			var rest []candidate
			for _, c := range pool[1:] {
				if sameVector(cov, cluster.TestCases, rep, c) {
					res.Info[c.element] = id
					res.Data[id] = append(res.Data[id], c.element)
				} else {
					rest = append(rest, c)
				}
			}
			pool = rest
		}
		start = end
	}
	return res
}

func sameVector(cov *domain.Coverage, tests []int, a, b candidate) bool {
	if a.covered == 0 && b.covered == 0 {
		return true
	}
	if a.covered != b.covered {
		return false
	}
	for _, tid := range tests {
		if cov.Covers(tid, a.element) != cov.Covers(tid, b.element) {
			return false
		}
	}
	return true
}

// Refine splits every partition of r by whether test covers its members. The
// result equals a full computation over the cluster extended by test, up to
// partition numbering.
func Refine(r *Result, cov *domain.Coverage, test int) *Result {
	out := &Result{
		Info: make(map[int]int, len(r.Info)),
		Data: make(map[int][]int, len(r.Data)),
	}
	next := 0
	for id := 0; id < len(r.Data); id++ {
		var in, notIn []int
		for _, cid := range r.Data[id] {
			if cov.Covers(test, cid) {
				in = append(in, cid)
			} else {
				notIn = append(notIn, cid)
			}
		}
		for _, members := range [][]int{in, notIn} {
			if len(members) == 0 {
				continue
			}
			out.Data[next] = members
			for _, cid := range members {
				out.Info[cid] = next
			}
			next++
		}
	}
	return out
}

// RefinedSizes returns the partition sizes Refine would produce without
// building the refined result.
func RefinedSizes(r *Result, cov *domain.Coverage, test int) []int {
	sizes := make([]int, 0, 2*len(r.Data))
	for id := 0; id < len(r.Data); id++ {
		in := 0
		for _, cid := range r.Data[id] {
			if cov.Covers(test, cid) {
				in++
			}
		}
		if in > 0 {
			sizes = append(sizes, in)
		}
		if out := len(r.Data[id]) - in; out > 0 {
			sizes = append(sizes, out)
		}
	}
	return sizes
}

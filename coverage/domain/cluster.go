package domain

import "sort"

// ClusterDefinition selects a subset of the coverage matrix: an ordered list
// of test case ids and an ordered list of code element ids (coverage space).
//
// The lists are neither sorted nor deduplicated; callers control uniqueness.
type ClusterDefinition struct {
	TestCases    []int
	CodeElements []int
}

// NewClusterDefinition creates an empty cluster.
func NewClusterDefinition() *ClusterDefinition {
	return &ClusterDefinition{}
}

// FullCluster returns a cluster with every test case and code element of cov.
func FullCluster(cov *Coverage) *ClusterDefinition {
	c := &ClusterDefinition{
		TestCases:    make([]int, cov.TestCount()),
		CodeElements: make([]int, cov.CodeElementCount()),
	}
	for i := range c.TestCases {
		c.TestCases[i] = i
	}
	for i := range c.CodeElements {
		c.CodeElements[i] = i
	}
	return c
}

// AddTestCase appends a test case id.
func (c *ClusterDefinition) AddTestCase(id int) {
	c.TestCases = append(c.TestCases, id)
}

// AddCodeElement appends a code element id.
func (c *ClusterDefinition) AddCodeElement(id int) {
	c.CodeElements = append(c.CodeElements, id)
}

// RemoveTestCase removes the first occurrence of id, if present.
func (c *ClusterDefinition) RemoveTestCase(id int) {
	c.TestCases = removeFirst(c.TestCases, id)
}

// RemoveCodeElement removes the first occurrence of id, if present.
func (c *ClusterDefinition) RemoveCodeElement(id int) {
	c.CodeElements = removeFirst(c.CodeElements, id)
}

func removeFirst(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// TestCaseCount returns the number of selected test cases.
func (c *ClusterDefinition) TestCaseCount() int { return len(c.TestCases) }

// CodeElementCount returns the number of selected code elements.
func (c *ClusterDefinition) CodeElementCount() int { return len(c.CodeElements) }

// Clone returns a deep copy.
func (c *ClusterDefinition) Clone() *ClusterDefinition {
	return &ClusterDefinition{
		TestCases:    append([]int(nil), c.TestCases...),
		CodeElements: append([]int(nil), c.CodeElements...),
	}
}

// ClusterMap maps cluster names to their definitions.
type ClusterMap map[string]*ClusterDefinition

// Names returns the cluster names in sorted order.
func (m ClusterMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

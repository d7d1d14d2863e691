package domain

import (
	"fmt"

	"github.com/example/covkit/coverage/bitmatrix"
)

// Changeset is the code element x revision "changed" relation.
type Changeset struct {
	elements  *IDMapper
	revisions revisionIndex
	bits      *bitmatrix.BitMatrix
}

// NewChangeset creates an empty changeset whose names live in elementIDs.
func NewChangeset(elementIDs *IDManager) *Changeset {
	return &Changeset{
		elements:  NewIDMapper(elementIDs),
		revisions: newRevisionIndex(),
		bits:      bitmatrix.New(0, 0),
	}
}

// CodeElements returns the code element id space.
func (c *Changeset) CodeElements() *IDMapper { return c.elements }

// Revisions returns the known revision numbers in insertion order.
func (c *Changeset) Revisions() []int { return c.revisions.list() }

// AddCodeElement registers a code element and returns its id.
func (c *Changeset) AddCodeElement(name string) int {
	id := c.elements.Add(name)
	c.refit()
	return id
}

// AddRevision registers a revision number.
func (c *Changeset) AddRevision(rev int) {
	c.revisions.add(rev)
	c.refit()
}

func (c *Changeset) refit() {
	rows, cols := c.elements.Len(), len(c.revisions.revisions)
	if c.bits.Rows() != rows || c.bits.Cols() != cols {
		c.bits.Resize(rows, cols)
	}
}

// SetChanged records whether element changed at rev, registering unknown names and revisions.
func (c *Changeset) SetChanged(element string, rev int, changed bool) {
	cid := c.AddCodeElement(element)
	c.AddRevision(rev)
	_ = c.Set(cid, rev, changed)
}

// Set records whether code element cid changed at rev.
func (c *Changeset) Set(cid, rev int, changed bool) error {
	col, err := c.revisions.index(rev)
	if err != nil {
		return err
	}
	if !c.bits.Set(cid, col, changed) {
		return fmt.Errorf("%w: changeset element id %d", ErrNotFound, cid)
	}
	return nil
}

// IsChanged reports whether code element cid changed at rev.
func (c *Changeset) IsChanged(cid, rev int) bool {
	col, err := c.revisions.index(rev)
	if err != nil {
		return false
	}
	return c.bits.Get(cid, col)
}

// ChangedElements returns the code element ids changed at rev.
func (c *Changeset) ChangedElements(rev int) []int {
	col, err := c.revisions.index(rev)
	if err != nil {
		return nil
	}
	return c.bits.Column(col).Indices()
}

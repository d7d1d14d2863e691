// Package codec reads and writes the four SelectionData matrices in a compact
// binary format built from protobuf wire primitives.
//
// Every blob is a flat sequence of protobuf fields:
//
//	1  kind       string   "coverage" | "results" | "changeset" | "bugs"
//	2  version    varint
//	3  test       string   (repeated, coverage and results)
//	4  element    string   (repeated, coverage, changeset and bugs)
//	5  row        bytes    (repeated, packed bits, one per row)
//	6  revision   varint   (repeated, zigzag encoded)
//	7  executed   bytes    (repeated, results only)
//	8  passed     bytes    (repeated, results only)
//	9  bug        bytes    (repeated, embedded {1 element, 2 reported, 3 fixed})
//
// Rows are packed little-endian within each byte: bit i lives in byte i/8 at
// position i%8.
package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/example/covkit/coverage/domain"
)

// Version is the current format version.
const Version = 1

const (
	kindCoverage  = "coverage"
	kindResults   = "results"
	kindChangeset = "changeset"
	kindBugs      = "bugs"
)

const (
	fieldKind     protowire.Number = 1
	fieldVersion  protowire.Number = 2
	fieldTest     protowire.Number = 3
	fieldElement  protowire.Number = 4
	fieldRow      protowire.Number = 5
	fieldRevision protowire.Number = 6
	fieldExecuted protowire.Number = 7
	fieldPassed   protowire.Number = 8
	fieldBug      protowire.Number = 9

	fieldBugElement  protowire.Number = 1
	fieldBugReported protowire.Number = 2
	fieldBugFixed    protowire.Number = 3
)

// record is the decoded, not yet validated, content of a blob.
type record struct {
	kind      string
	version   uint64
	tests     []string
	elements  []string
	rows      [][]byte
	revisions []int
	executed  [][]byte
	passed    [][]byte
	bugs      []bugRecord
}

type bugRecord struct {
	element string
	report  domain.BugReport
}

func appendHeader(b []byte, kind string) []byte {
	b = protowire.AppendTag(b, fieldKind, protowire.BytesType)
	b = protowire.AppendString(b, kind)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	return protowire.AppendVarint(b, Version)
}

func appendStrings(b []byte, num protowire.Number, values []string) []byte {
	for _, v := range values {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

func appendRevisions(b []byte, revisions []int) []byte {
	for _, rev := range revisions {
		b = protowire.AppendTag(b, fieldRevision, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(rev)))
	}
	return b
}

func appendBits(b []byte, num protowire.Number, n int, get func(i int) bool) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packBits(n, get))
}

func packBits(n int, get func(i int) bool) []byte {
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if get(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// unpackBits validates that packed holds exactly n bits and returns the set positions.
func unpackBits(packed []byte, n int) ([]int, error) {
	if len(packed) != (n+7)/8 {
		return nil, fmt.Errorf("%w: row has %d bytes, want %d",
			domain.ErrDimensionMismatch, len(packed), (n+7)/8)
	}
	var set []int
	for i, by := range packed {
		for bit := 0; bit < 8 && by != 0; bit++ {
			if by&(1<<uint(bit)) == 0 {
				continue
			}
			pos := i*8 + bit
			if pos >= n {
				return nil, fmt.Errorf("%w: bit %d set beyond %d columns",
					domain.ErrDimensionMismatch, pos, n)
			}
			set = append(set, pos)
		}
	}
	return set, nil
}

func decode(data []byte, wantKind string) (*record, error) {
	rec := &record{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("codec: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case typ == protowire.BytesType && num != fieldVersion && num != fieldRevision:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("codec: field %d: %w", num, protowire.ParseError(m))
			}
			data = data[m:]
			if err := rec.setBytes(num, v); err != nil {
				return nil, err
			}
		case typ == protowire.VarintType && (num == fieldVersion || num == fieldRevision):
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("codec: field %d: %w", num, protowire.ParseError(m))
			}
			data = data[m:]
			if num == fieldVersion {
				rec.version = v
			} else {
				rec.revisions = append(rec.revisions, int(protowire.DecodeZigZag(v)))
			}
		default:
			// Unknown fields are skipped so newer writers stay readable.
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return nil, fmt.Errorf("codec: field %d: %w", num, protowire.ParseError(m))
			}
			data = data[m:]
		}
	}

	if rec.kind != wantKind {
		return nil, fmt.Errorf("codec: blob holds %q, want %q", rec.kind, wantKind)
	}
	if rec.version == 0 || rec.version > Version {
		return nil, fmt.Errorf("codec: unsupported version %d", rec.version)
	}
	return rec, nil
}

func (r *record) setBytes(num protowire.Number, v []byte) error {
	switch num {
	case fieldKind:
		r.kind = string(v)
	case fieldTest:
		r.tests = append(r.tests, string(v))
	case fieldElement:
		r.elements = append(r.elements, string(v))
	case fieldRow:
		r.rows = append(r.rows, append([]byte(nil), v...))
	case fieldExecuted:
		r.executed = append(r.executed, append([]byte(nil), v...))
	case fieldPassed:
		r.passed = append(r.passed, append([]byte(nil), v...))
	case fieldBug:
		bug, err := decodeBug(v)
		if err != nil {
			return err
		}
		r.bugs = append(r.bugs, bug)
	}
	return nil
}

func encodeBug(element string, report domain.BugReport) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldBugElement, protowire.BytesType)
	b = protowire.AppendString(b, element)
	b = protowire.AppendTag(b, fieldBugReported, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(report.Reported))
	b = protowire.AppendTag(b, fieldBugFixed, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(report.Fixed))
}

func decodeBug(data []byte) (bugRecord, error) {
	var bug bugRecord
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return bug, fmt.Errorf("codec: bad bug tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldBugElement && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(data)
			if m < 0 {
				return bug, fmt.Errorf("codec: bug element: %w", protowire.ParseError(m))
			}
			bug.element = v
			data = data[m:]
		case (num == fieldBugReported || num == fieldBugFixed) && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return bug, fmt.Errorf("codec: bug timestamp: %w", protowire.ParseError(m))
			}
			if num == fieldBugReported {
				bug.report.Reported = protowire.DecodeZigZag(v)
			} else {
				bug.report.Fixed = protowire.DecodeZigZag(v)
			}
			data = data[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return bug, fmt.Errorf("codec: bug field %d: %w", num, protowire.ParseError(m))
			}
			data = data[m:]
		}
	}
	return bug, nil
}

func checkRows(what string, rows [][]byte, want int) error {
	if len(rows) != want {
		return fmt.Errorf("%w: %s has %d rows, want %d", domain.ErrDimensionMismatch, what, len(rows), want)
	}
	return nil
}

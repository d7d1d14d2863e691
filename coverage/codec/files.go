package codec

import (
	"fmt"
	"os"

	"github.com/example/covkit/coverage/domain"
)

// Paths names the on-disk files of a data set. Empty entries are skipped.
type Paths struct {
	Coverage  string `mapstructure:"coverage" yaml:"coverage"`
	Results   string `mapstructure:"results" yaml:"results"`
	Changeset string `mapstructure:"changeset" yaml:"changeset"`
	Bugs      string `mapstructure:"bugs" yaml:"bugs"`
}

type matrixFile struct {
	path   string
	decode func([]byte, *domain.SelectionData) error
	encode func(*domain.SelectionData) []byte
}

func (p Paths) files() []matrixFile {
	return []matrixFile{
		{p.Coverage, DecodeCoverage, func(d *domain.SelectionData) []byte { return EncodeCoverage(d.Coverage()) }},
		{p.Results, DecodeResults, func(d *domain.SelectionData) []byte { return EncodeResults(d.Results()) }},
		{p.Changeset, DecodeChangeset, func(d *domain.SelectionData) []byte { return EncodeChangeset(d.Changeset()) }},
		{p.Bugs, DecodeBugs, func(d *domain.SelectionData) []byte { return EncodeBugs(d.Bugs()) }},
	}
}

// Load reads every named file into d.
func Load(p Paths, d *domain.SelectionData) error {
	for _, f := range p.files() {
		if f.path == "" {
			continue
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.path, err)
		}
		if err := f.decode(data, d); err != nil {
			return fmt.Errorf("decode %s: %w", f.path, err)
		}
	}
	return nil
}

// Save writes every named file from d.
func Save(p Paths, d *domain.SelectionData) error {
	for _, f := range p.files() {
		if f.path == "" {
			continue
		}
		if err := writeFile(f.path, f.encode(d)); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes through a temporary sibling so readers never observe a
// partially written matrix.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// LoadCoverage populates the coverage matrix of d from path.
func LoadCoverage(path string, d *domain.SelectionData) error {
	return Load(Paths{Coverage: path}, d)
}

// LoadResults populates the results matrix of d from path.
func LoadResults(path string, d *domain.SelectionData) error {
	return Load(Paths{Results: path}, d)
}

// LoadChangeset populates the changeset of d from path.
func LoadChangeset(path string, d *domain.SelectionData) error {
	return Load(Paths{Changeset: path}, d)
}

// LoadBugs populates the bugset of d from path.
func LoadBugs(path string, d *domain.SelectionData) error {
	return Load(Paths{Bugs: path}, d)
}

// SaveCoverage writes the coverage matrix of d to path.
func SaveCoverage(path string, d *domain.SelectionData) error {
	return Save(Paths{Coverage: path}, d)
}

// SaveResults writes the results matrix of d to path.
func SaveResults(path string, d *domain.SelectionData) error {
	return Save(Paths{Results: path}, d)
}

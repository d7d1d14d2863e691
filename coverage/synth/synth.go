// Package synth builds synthetic coverage data sets with a known set of faulty
// code elements, for benchmarks and tests.
package synth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/example/covkit/coverage/domain"
)

// Config describes a synthetic data set.
type Config struct {
	Tests        int `mapstructure:"tests"`
	CodeElements int `mapstructure:"codeElements"`

	// ColumnWeight is the number of tests covering each code element.
	// 0 derives it from the number of tests.
	ColumnWeight int `mapstructure:"columnWeight"`

	// Faulty is the number of code elements that make covering tests fail.
	Faulty int `mapstructure:"faulty"`

	// FlakeRate is the probability that a test which should pass fails anyway.
	FlakeRate float64 `mapstructure:"flakeRate"`

	// Revision is the revision the results and changeset are recorded at.
	Revision int `mapstructure:"revision"`

	// Seed for the random source (0 for random).
	Seed int64 `mapstructure:"seed"`
}

// WithDefaults returns a copy of the config with unset fields filled in.
func (c Config) WithDefaults() Config {
	if c.Tests == 0 {
		c.Tests = 100
	}
	if c.CodeElements == 0 {
		c.CodeElements = 1000
	}
	if c.ColumnWeight == 0 {
		c.ColumnWeight = calculateColumnWeight(c.Tests)
	}
	if c.Faulty == 0 {
		c.Faulty = 1
	}
	if c.Revision == 0 {
		c.Revision = 1
	}
	return c
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.Tests < 1 {
		return fmt.Errorf("%w: tests must be positive, got %d", domain.ErrInvalidConfig, c.Tests)
	}
	if c.CodeElements < 1 {
		return fmt.Errorf("%w: codeElements must be positive, got %d", domain.ErrInvalidConfig, c.CodeElements)
	}
	if c.ColumnWeight < 0 || c.ColumnWeight > c.Tests {
		return fmt.Errorf("%w: columnWeight must be within [0, %d], got %d", domain.ErrInvalidConfig, c.Tests, c.ColumnWeight)
	}
	if c.Faulty < 0 || c.Faulty > c.CodeElements {
		return fmt.Errorf("%w: faulty must be within [0, %d], got %d", domain.ErrInvalidConfig, c.CodeElements, c.Faulty)
	}
	if c.FlakeRate < 0 || c.FlakeRate > 1 {
		return fmt.Errorf("%w: flakeRate must be within [0, 1], got %v", domain.ErrInvalidConfig, c.FlakeRate)
	}
	return nil
}

// calculateColumnWeight determines how many tests cover each code element.
//
// A weight of about 2*log2(n) gives every element a distinctive coverage
// vector with high probability while keeping the matrix sparse.
func calculateColumnWeight(tests int) int {
	if tests <= 1 {
		return tests
	}
	weight := int(math.Ceil(2.0 * math.Log2(float64(tests))))
	if weight < 1 {
		weight = 1
	}
	if weight > tests {
		weight = tests
	}
	return weight
}

// Truth describes what was planted in a generated data set.
type Truth struct {
	Faulty []string
	Flaky  []string
}

// TestName returns the name of the i-th synthetic test.
func TestName(i int) string { return fmt.Sprintf("test-%04d", i) }

// ElementName returns the name of the i-th synthetic code element.
func ElementName(i int) string { return fmt.Sprintf("elem-%05d", i) }

// Generate builds a SelectionData with coverage, results and changeset.
//
// The algorithm:
//  1. For each code element, randomly select ColumnWeight tests covering it
//  2. Pick Faulty code elements and mark them changed at Revision
//  3. A test fails at Revision iff it covers a faulty element, or it flakes
func Generate(cfg Config) (*domain.SelectionData, *Truth, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var rng *rand.Rand
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	} else {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	d := domain.NewSelectionData()
	cov := d.Coverage()
	for i := 0; i < cfg.Tests; i++ {
		cov.AddTestCase(TestName(i))
	}
	for i := 0; i < cfg.CodeElements; i++ {
		cov.AddCodeElement(ElementName(i))
	}
	for cid := 0; cid < cfg.CodeElements; cid++ {
		for _, tid := range randomSample(rng, cfg.Tests, cfg.ColumnWeight) {
			if err := cov.Set(tid, cid, true); err != nil {
				return nil, nil, err
			}
		}
	}

	truth := &Truth{}
	faulty := randomSample(rng, cfg.CodeElements, cfg.Faulty)
	sort.Ints(faulty)
	ch := d.Changeset()
	ch.AddRevision(cfg.Revision)
	for _, cid := range faulty {
		truth.Faulty = append(truth.Faulty, ElementName(cid))
		ch.SetChanged(ElementName(cid), cfg.Revision, true)
	}

	res := d.Results()
	res.AddRevision(cfg.Revision)
	for tid := 0; tid < cfg.Tests; tid++ {
		outcome := domain.OutcomePassed
		for _, cid := range faulty {
			if cov.Covers(tid, cid) {
				outcome = domain.OutcomeFailed
				break
			}
		}
		if outcome == domain.OutcomePassed && cfg.FlakeRate > 0 && rng.Float64() < cfg.FlakeRate {
			outcome = domain.OutcomeFailed
			truth.Flaky = append(truth.Flaky, TestName(tid))
		}
		res.SetResult(TestName(tid), cfg.Revision, outcome)
	}
	return d, truth, nil
}

// randomSample returns k random distinct integers from [0, n).
func randomSample(rng *rand.Rand, n, k int) []int {
	if k >= n {
		result := make([]int, n)
		for i := range result {
			result[i] = i
		}
		return result
	}

	selected := make(map[int]struct{}, k)
	result := make([]int, 0, k)
	for len(result) < k {
		idx := rng.Intn(n)
		if _, exists := selected[idx]; !exists {
			selected[idx] = struct{}{}
			result = append(result, idx)
		}
	}
	return result
}

// Package localization scores code elements by how suspicious they are given
// which tests covered them and whether those tests failed.
package localization

import (
	"fmt"
	"math"
	"sort"

	"github.com/example/covkit/coverage/domain"
)

// Counts are the spectrum counts of one code element:
// EF/EP failing/passing tests covering it, NF/NP failing/passing tests that do not.
type Counts struct {
	EF, EP, NF, NP int
}

// Formula turns spectrum counts into a suspiciousness score.
type Formula func(Counts) float64

// Ochiai is ef / sqrt((ef+nf) * (ef+ep)).
func Ochiai(c Counts) float64 {
	denom := math.Sqrt(float64(c.EF+c.NF) * float64(c.EF+c.EP))
	if denom == 0 {
		return 0
	}
	return float64(c.EF) / denom
}

// Tarantula is (ef/F) / (ef/F + ep/P), with a ratio of 0 when its total is 0.
func Tarantula(c Counts) float64 {
	var failRatio, passRatio float64
	if f := c.EF + c.NF; f > 0 {
		failRatio = float64(c.EF) / float64(f)
	}
	if p := c.EP + c.NP; p > 0 {
		passRatio = float64(c.EP) / float64(p)
	}
	if failRatio+passRatio == 0 {
		return 0
	}
	return failRatio / (failRatio + passRatio)
}

// Jaccard is ef / (ef + nf + ep).
func Jaccard(c Counts) float64 {
	denom := c.EF + c.NF + c.EP
	if denom == 0 {
		return 0
	}
	return float64(c.EF) / float64(denom)
}

// DStar returns ef^star / (ep + nf). A zero denominator with ef > 0 scores
// +Inf, which ranks the element above every finite score.
func DStar(star float64) Formula {
	return func(c Counts) float64 {
		num := math.Pow(float64(c.EF), star)
		denom := float64(c.EP + c.NF)
		if denom == 0 {
			if num == 0 {
				return 0
			}
			return math.Inf(1)
		}
		return num / denom
	}
}

// DefaultStar is the DStar exponent used when none is configured.
const DefaultStar = 2

// Technique names.
const (
	OchiaiName    = "ochiai"
	TarantulaName = "tarantula"
	DStarName     = "dstar"
	JaccardName   = "jaccard"
)

// Lookup resolves a technique by name. params may carry "star" for dstar.
func Lookup(name string, params domain.Params) (Formula, error) {
	switch name {
	case OchiaiName:
		return Ochiai, nil
	case TarantulaName:
		return Tarantula, nil
	case JaccardName:
		return Jaccard, nil
	case DStarName:
		star, err := params.Float("star", DefaultStar)
		if err != nil {
			return nil, err
		}
		if star <= 0 {
			return nil, fmt.Errorf("%w: star must be positive, got %v", domain.ErrInvalidConfig, star)
		}
		return DStar(star), nil
	}
	return nil, fmt.Errorf("%w: technique %q", domain.ErrUnknownAlgorithm, name)
}

// Techniques returns the known technique names in sorted order.
func Techniques() []string {
	names := []string{OchiaiName, TarantulaName, DStarName, JaccardName}
	sort.Strings(names)
	return names
}

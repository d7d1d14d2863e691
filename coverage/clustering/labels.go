package clustering

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/example/covkit/coverage/domain"
)

const LabelsName = "label-test-codeelements"

// LabelSet maps a test case or code element name to its label.
type LabelSet map[string]string

// ParseLabels reads a YAML mapping of name to label.
func ParseLabels(r io.Reader) (LabelSet, error) {
	labels := LabelSet{}
	if err := yaml.NewDecoder(r).Decode(&labels); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	return labels, nil
}

func loadLabels(path string) (LabelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()
	return ParseLabels(f)
}

// Labels builds one cluster per (test label, code element label) pair, named
// "<test label>-<element label>". Unlabeled names are left out.
type Labels struct {
	tests    LabelSet
	elements LabelSet
}

func (*Labels) Name() string { return LabelsName }

func (l *Labels) Init(params domain.Params) error {
	testPath, err := params.String("testLabels", "")
	if err != nil {
		return err
	}
	elemPath, err := params.String("codeElementLabels", "")
	if err != nil {
		return err
	}
	if testPath == "" || elemPath == "" {
		return fmt.Errorf("%w: testLabels and codeElementLabels are required", domain.ErrInvalidConfig)
	}
	if l.tests, err = loadLabels(testPath); err != nil {
		return err
	}
	l.elements, err = loadLabels(elemPath)
	return err
}

// WithLabels sets the label sets directly.
func (l *Labels) WithLabels(tests, elements LabelSet) *Labels {
	l.tests, l.elements = tests, elements
	return l
}

func (l *Labels) Execute(data *domain.SelectionData, clusters domain.ClusterMap) error {
	cov := data.Coverage()
	testGroups := groupByLabel(cov.TestCases(), l.tests)
	elemGroups := groupByLabel(cov.CodeElements(), l.elements)

	for _, tl := range sortedKeys(testGroups) {
		for _, el := range sortedKeys(elemGroups) {
			clusters[tl+"-"+el] = &domain.ClusterDefinition{
				TestCases:    append([]int(nil), testGroups[tl]...),
				CodeElements: append([]int(nil), elemGroups[el]...),
			}
		}
	}
	return nil
}

func groupByLabel(ids *domain.IDMapper, labels LabelSet) map[string][]int {
	groups := make(map[string][]int)
	for id, name := range ids.Names() {
		if label, ok := labels[name]; ok {
			groups[label] = append(groups[label], id)
		}
	}
	return groups
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/covkit/coverage/codec"
	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/internal/batch"
	"github.com/example/covkit/internal/config"
)

// dataFlags selects the data set a command works on.
type dataFlags struct {
	inputs    codec.Paths
	snapshot  config.SnapshotRef
	globalize bool
	filter    bool
}

func (f *dataFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.inputs.Coverage, "coverage", "", "coverage matrix file")
	fl.StringVar(&f.inputs.Results, "results", "", "test results file")
	fl.StringVar(&f.inputs.Changeset, "changeset", "", "changeset file")
	fl.StringVar(&f.inputs.Bugs, "bugs", "", "bug set file")
	fl.StringVar(&f.snapshot.Path, "snapshot", "", "snapshot file (instead of matrix files)")
	fl.StringVar(&f.snapshot.Name, "name", "", "snapshot name")
	fl.BoolVar(&f.globalize, "globalize", false, "extend every matrix to all known ids")
	fl.BoolVar(&f.filter, "filter-to-coverage", false, "drop ids the coverage matrix does not know")
}

// job returns an unsaved job over the selected data set.
func (f *dataFlags) job(name string) *config.Job {
	return &config.Job{
		Name:             name,
		Inputs:           f.inputs,
		Snapshot:         f.snapshot,
		Globalize:        f.globalize,
		FilterToCoverage: f.filter,
	}
}

// parseParams turns key=value pairs into algorithm parameters. Values stay
// strings; the typed getters parse them.
func parseParams(pairs []string) (domain.Params, error) {
	params := domain.Params{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", domain.ErrInvalidConfig, pair)
		}
		params[key] = value
	}
	return params, nil
}

// runJob validates job and runs it through a driver without storage.
func runJob(cmd *cobra.Command, job *config.Job) (*batch.Report, error) {
	job.WithDefaults()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return batch.New(logger).RunJob(cmd.Context(), job)
}

// stepErrors reports the failed steps of report and returns them joined.
func stepErrors(report *batch.Report) error {
	if len(report.Failures) == 0 {
		return nil
	}
	return errors.Join(report.Failures...)
}

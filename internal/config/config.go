// Package config loads covkit job files.
//
// A job names a data set (raw matrix files or a snapshot) and the clustering,
// prioritization and localization steps to run on it. Job files are JSON or
// YAML, chosen by extension, and every key can be overridden from the
// environment with the COVKIT_ prefix, e.g. COVKIT_OUTPUT_DATABASE.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/example/covkit/coverage/codec"
	"github.com/example/covkit/coverage/domain"
	"github.com/example/covkit/internal/logging"
)

const envPrefix = "COVKIT"

// SnapshotRef points at a data set stored in a snapshot file.
type SnapshotRef struct {
	Path string `mapstructure:"path"`
	Name string `mapstructure:"name"`
}

// ClusteringStep runs one clustering algorithm.
type ClusteringStep struct {
	Algorithm string        `mapstructure:"algorithm"`
	Params    domain.Params `mapstructure:"params"`
}

// PrioritizationStep runs one prioritization algorithm.
type PrioritizationStep struct {
	Algorithm string `mapstructure:"algorithm"`

	// Size limits the selection. 0 selects every test.
	Size int `mapstructure:"size"`

	// Revision scopes revision aware algorithms. 0 keeps the latest revision.
	Revision int `mapstructure:"revision"`

	// TieBreak is ascending or descending; empty keeps the algorithm default.
	TieBreak string `mapstructure:"tieBreak"`

	// Cluster restricts the run to a cluster produced by a clustering step.
	Cluster string `mapstructure:"cluster"`

	Params domain.Params `mapstructure:"params"`
}

// LocalizationStep scores code elements for one revision.
type LocalizationStep struct {
	Technique string        `mapstructure:"technique"`
	Revision  int           `mapstructure:"revision"`
	Workers   int           `mapstructure:"workers"`
	Cluster   string        `mapstructure:"cluster"`
	Params    domain.Params `mapstructure:"params"`
}

// Output configures where results go besides the log.
type Output struct {
	// Database is a SQLite file recording runs. Empty disables recording.
	Database string `mapstructure:"database"`

	// MetricsFile receives run metrics in the Prometheus text format.
	MetricsFile string `mapstructure:"metricsFile"`
}

// Job is one unit of batch work.
type Job struct {
	Name     string      `mapstructure:"name"`
	Inputs   codec.Paths `mapstructure:"inputs"`
	Snapshot SnapshotRef `mapstructure:"snapshot"`

	Globalize        bool `mapstructure:"globalize"`
	FilterToCoverage bool `mapstructure:"filterToCoverage"`

	Clustering     []ClusteringStep     `mapstructure:"clustering"`
	Prioritization []PrioritizationStep `mapstructure:"prioritization"`
	Localization   *LocalizationStep    `mapstructure:"localization"`

	Output Output         `mapstructure:"output"`
	Log    logging.Config `mapstructure:"log"`

	path string
}

// Path returns the file the job was loaded from.
func (j *Job) Path() string { return j.path }

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env overrides only reach keys viper knows about.
	v.SetDefault("output.database", "")
	v.SetDefault("output.metricsFile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	return v
}

// Load reads, completes and validates the job file at path.
func Load(path string) (*Job, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read job %s: %w", path, err)
	}

	job := &Job{path: path}
	if err := v.Unmarshal(job); err != nil {
		return nil, fmt.Errorf("%w: decode job %s: %v", domain.ErrInvalidConfig, path, err)
	}
	job.WithDefaults()
	job.resolvePaths(filepath.Dir(path))

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("job %s: %w", path, err)
	}
	return job, nil
}

// WithDefaults fills in unset fields.
func (j *Job) WithDefaults() {
	if j.Name == "" && j.path != "" {
		j.Name = strings.TrimSuffix(filepath.Base(j.path), filepath.Ext(j.path))
	}
	if j.Localization != nil && j.Localization.Technique == "" {
		j.Localization.Technique = "ochiai"
	}
}

// resolvePaths makes relative input paths relative to the job file.
func (j *Job) resolvePaths(dir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	resolve(&j.Inputs.Coverage)
	resolve(&j.Inputs.Results)
	resolve(&j.Inputs.Changeset)
	resolve(&j.Inputs.Bugs)
	resolve(&j.Snapshot.Path)
	resolve(&j.Output.Database)
	resolve(&j.Output.MetricsFile)
}

// Validate reports every problem with the job at once.
func (j *Job) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidConfig}, args...)...))
	}

	fromSnapshot := j.Snapshot.Name != ""
	switch {
	case fromSnapshot && j.Inputs.Coverage != "":
		invalid("inputs and snapshot are mutually exclusive")
	case fromSnapshot && j.Snapshot.Path == "":
		invalid("snapshot.path is required with snapshot.name")
	case !fromSnapshot && j.Inputs.Coverage == "":
		invalid("inputs.coverage or snapshot.name is required")
	}

	for i, step := range j.Clustering {
		if step.Algorithm == "" {
			invalid("clustering[%d]: algorithm is required", i)
		}
	}
	for i, step := range j.Prioritization {
		if step.Algorithm == "" {
			invalid("prioritization[%d]: algorithm is required", i)
		}
		if step.Size < 0 {
			invalid("prioritization[%d]: size must not be negative, got %d", i, step.Size)
		}
		switch step.TieBreak {
		case "", "asc", "ascending", "desc", "descending":
		default:
			invalid("prioritization[%d]: unknown tieBreak %q", i, step.TieBreak)
		}
	}
	if l := j.Localization; l != nil && l.Workers < 0 {
		invalid("localization: workers must not be negative, got %d", l.Workers)
	}
	if err := j.Log.Validate(); err != nil {
		invalid("log: %v", err)
	}
	return errors.Join(errs...)
}

// InputFiles lists the files whose change should re-run the job.
func (j *Job) InputFiles() []string {
	var files []string
	for _, p := range []string{j.path, j.Inputs.Coverage, j.Inputs.Results, j.Inputs.Changeset, j.Inputs.Bugs, j.Snapshot.Path} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}
